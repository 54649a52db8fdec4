package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Backend Backend
	Speech  Speech
	Redis   Redis
	History History
	Status  Status
	Logging Logging
}

type Backend struct {
	BaseURL    string
	TimeoutSec int
}

type Speech struct {
	CacheCapacity int
	PlayerCommand string
	DefaultLang   string
}

type Redis struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLHours int
}

type History struct {
	Path string
}

type Status struct {
	Enabled bool
	Addr    string
}

type Logging struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.curesight")
	viper.AddConfigPath("/etc/curesight")

	viper.SetEnvPrefix("CURESIGHT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("backend.baseURL", "http://localhost:8000")
	viper.SetDefault("backend.timeoutSec", 30)

	viper.SetDefault("speech.cacheCapacity", 64)
	viper.SetDefault("speech.playerCommand", "")
	viper.SetDefault("speech.defaultLang", "en-US")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlHours", 168)

	viper.SetDefault("history.path", "./data/curesight.db")

	viper.SetDefault("status.enabled", true)
	viper.SetDefault("status.addr", "127.0.0.1:9464")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.outputPath", "stderr")
}
