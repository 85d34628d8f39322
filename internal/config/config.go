package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr = ":3000"
)

type MySQLConfig struct {
	Dsn             string `mapstructure:"dsn"`
	TablePrefix     string `mapstructure:"tablePrefix"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type ScopeConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	IsDefault   bool   `mapstructure:"isDefault"`
}

type OAuthConfig struct {
	Scopes    []ScopeConfig `mapstructure:"scopes"`
	CASScopes []ScopeConfig `mapstructure:"casScopes"` // reserved set for session-bound issuance
}

type Config struct {
	Debug        bool        `mapstructure:"debug"`
	SiteName     string      `mapstructure:"siteName"`
	BaseURL      string      `mapstructure:"baseURL"`
	ListenAddr   string      `mapstructure:"listenAddr"`
	AllowOrigins []string    `mapstructure:"allowOrigins"`
	Redis        RedisConfig `mapstructure:"redis"`
	MySQL        MySQLConfig `mapstructure:"mysql"`
	OAuth        OAuthConfig `mapstructure:"oauth"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
