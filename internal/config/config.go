package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/bashkirian/haulstats/internal/charts"
	"github.com/bashkirian/haulstats/internal/loader"
)

// Config структура для конфигурации приложения
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Charts  ChartsConfig  `mapstructure:"charts"`
}

// ServerConfig конфигурация сервера
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// StorageConfig где хранить отчёты: memory или sqlite
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LoaderConfig разбор журналов событий
type LoaderConfig struct {
	Format          string  `mapstructure:"format"`
	DefaultDuration float64 `mapstructure:"default_duration"`
}

// ChartsConfig данные для графиков
type ChartsConfig struct {
	Bins   int          `mapstructure:"bins"`
	Colors charts.Style `mapstructure:"colors"`
}

// LoaderOptions переводит секцию loader в опции загрузчика
func (c *Config) LoaderOptions() (loader.Options, error) {
	format, err := loader.ParseFormat(c.Loader.Format)
	if err != nil {
		return loader.Options{}, err
	}
	return loader.Options{
		Format:          format,
		DefaultDuration: c.Loader.DefaultDuration,
	}, nil
}

// LoadConfig загружает конфигурацию из файла и переменных окружения
func LoadConfig() (*Config, error) {
	return load(viper.New(), "")
}

// LoadConfigFile то же самое, но с явным путём к файлу
func LoadConfigFile(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/haulstats")
	}

	// Устанавливаем значения по умолчанию
	v.SetDefault("server.port", "8080")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dsn", "file:haulstats.db?cache=shared&mode=rwc")
	v.SetDefault("loader.format", string(loader.FormatAuto))
	v.SetDefault("loader.default_duration", loader.DefaultSimulationDuration)
	v.SetDefault("charts.bins", charts.DefaultBins)
	v.SetDefault("charts.colors.mining", charts.DefaultStyle.Mining)
	v.SetDefault("charts.colors.unload", charts.DefaultStyle.Unload)

	// Читаем переменные окружения
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Если файла нет, работаем на значениях по умолчанию и окружении
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path != "" {
				return nil, err
			}
			log.Printf("[WARN] could not read config file: %v", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
