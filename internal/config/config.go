package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host string
	Port string
}

// LLMConfig настройки внешнего генератора текста (OpenAI-совместимый API)
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// CronConfig общий секрет для HTTP-триггера batch-задачи
type CronConfig struct {
	Secret string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Отсутствие .env не фатально: режим in-memory должен стартовать без конфигурации
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	cfg.App.Port = viper.GetString("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	cfg.DB.Host = viper.GetString("DB_HOST")
	cfg.DB.Port = viper.GetString("DB_PORT")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")
	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")

	cfg.LLM.BaseURL = viper.GetString("LLM_BASE_URL")
	cfg.LLM.APIKey = viper.GetString("LLM_API_KEY")
	cfg.LLM.Model = viper.GetString("LLM_MODEL")
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}

	cfg.Cron.Secret = viper.GetString("CRON_SECRET")

	cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_RPS")
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	cfg.RateLimit.BurstSize = viper.GetInt("RATE_LIMIT_BURST")
	if cfg.RateLimit.BurstSize == 0 {
		cfg.RateLimit.BurstSize = 20
	}

	return &cfg, nil
}

// HasDatabase указывает, настроен ли внешний PostgreSQL.
// Без него сервис деградирует до эфемерного in-memory хранилища.
func (c *Config) HasDatabase() bool {
	return c.DB.Host != ""
}

// HasRedis указывает, настроен ли Redis для кэша горячих вопросов
func (c *Config) HasRedis() bool {
	return c.Redis.Host != ""
}
