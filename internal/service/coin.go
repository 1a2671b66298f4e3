package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Количество позиций в одном броске
const coinCount = 6

// Названия линий по числу решек (0-3)
var yaoNames = [4]string{"阴爻", "少阳", "少阴", "阳爻"}

// Текстовое описание исхода трёх монет по значению позиции
var positionOutcomes = [4]string{
	"三个反面",
	"两个反面一个正面",
	"一个反面两个正面",
	"三个正面",
}

// tossCoins бросает 6 позиций; значение позиции = число решек
// среди трёх независимых честных монет (биномиальное распределение B(3, 0.5))
func tossCoins() ([]int, error) {
	results := make([]int, coinCount)
	for i := range results {
		backs := 0
		for j := 0; j < 3; j++ {
			bit, err := rand.Int(rand.Reader, big.NewInt(2))
			if err != nil {
				return nil, fmt.Errorf("failed to flip coin: %w", err)
			}
			backs += int(bit.Int64())
		}
		results[i] = backs
	}
	return results, nil
}

func coinSum(coins []int) int {
	sum := 0
	for _, v := range coins {
		sum += v
	}
	return sum
}

// energyIndex числовое зерно генерации: сумма значений mod 4
func energyIndex(coins []int) int {
	return coinSum(coins) % 4
}

// describePositions построчное описание позиций для промпта разбора
func describePositions(coins []int) string {
	lines := make([]string, len(coins))
	for i, v := range coins {
		lines[i] = fmt.Sprintf("位置%d：%s（值%d）", i+1, positionOutcomes[v], v)
	}
	return strings.Join(lines, "\n")
}

// describeYao краткое описание броска для Q&A промпта
func describeYao(coins []int) string {
	names := make([]string, len(coins))
	for i, v := range coins {
		names[i] = yaoNames[v]
	}
	return fmt.Sprintf("根据硬币投掷结果（%s），", strings.Join(names, " "))
}

// coinTraits общий блок «числовых характеристик» для промптов генерации
func coinTraits(coins []int) string {
	return fmt.Sprintf(
		"用户提供了一些数字特征，具体如下：\n\n%s\n\n总值：%d\n能量指数：%d（0-3之间，0表示静谦，3表示活力）",
		describePositions(coins),
		coinSum(coins),
		energyIndex(coins),
	)
}
