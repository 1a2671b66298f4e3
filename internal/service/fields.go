package service

import (
	"errors"
)

var ErrUnknownField = errors.New("unknown analysis field")

// Field закрытое перечисление из 7 полей разбора.
// Промпты резолвятся исчерпывающим switch, а не map по строке,
// чтобы новое поле нельзя было забыть.
type Field int

const (
	FieldGreeting Field = iota
	FieldOutfit
	FieldColor
	FieldMood
	FieldCareer
	FieldLove
	FieldLuck
)

// AllFields возвращает все поля в порядке отображения
func AllFields() []Field {
	return []Field{FieldGreeting, FieldOutfit, FieldColor, FieldMood, FieldCareer, FieldLove, FieldLuck}
}

// ParseField валидирует имя поля с клиента
func ParseField(name string) (Field, error) {
	switch name {
	case "greeting":
		return FieldGreeting, nil
	case "outfit":
		return FieldOutfit, nil
	case "color":
		return FieldColor, nil
	case "mood":
		return FieldMood, nil
	case "career":
		return FieldCareer, nil
	case "love":
		return FieldLove, nil
	case "luck":
		return FieldLuck, nil
	default:
		return 0, ErrUnknownField
	}
}

func (f Field) Name() string {
	switch f {
	case FieldGreeting:
		return "greeting"
	case FieldOutfit:
		return "outfit"
	case FieldColor:
		return "color"
	case FieldMood:
		return "mood"
	case FieldCareer:
		return "career"
	case FieldLove:
		return "love"
	case FieldLuck:
		return "luck"
	}
	return ""
}

// Label название рубрики в продукте
func (f Field) Label() string {
	switch f {
	case FieldGreeting:
		return "早安心语"
	case FieldOutfit:
		return "穿搭灵感"
	case FieldColor:
		return "幸运配色"
	case FieldMood:
		return "情绪流动"
	case FieldCareer:
		return "工作指引"
	case FieldLove:
		return "情感气场"
	case FieldLuck:
		return "幸运微光"
	}
	return ""
}

// description описание содержимого поля, используется и в промптах,
// и в json-схеме полного разбора
func (f Field) description() string {
	switch f {
	case FieldGreeting:
		return "温暖的早安祝福和鼓励"
	case FieldOutfit:
		return "今天适合的穿搭建议"
	case FieldColor:
		return "推荐的幸运颜色和其含义"
	case FieldMood:
		return "今天的情绪特点和调整建议"
	case FieldCareer:
		return "工作方面的建议"
	case FieldLove:
		return "人际关系和情感方面的建议"
	case FieldLuck:
		return "今天可能的小幸运"
	}
	return ""
}
