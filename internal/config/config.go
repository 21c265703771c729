package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

const defaultResetTokenTTL = 15 * time.Minute

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	JwtTTLSeconds        int    `yaml:"jwt_ttl_seconds"`
	ResetTokenTTLSeconds int    `yaml:"reset_token_ttl_seconds"` // 0 means the 15 minute default
	BcryptCost           int    `yaml:"bcrypt_cost"`             // 0 falls back to the bcrypt default
	SecureCookies        bool   `yaml:"secure_cookies"`
	LogLevel             string `yaml:"log_level"`
	LogJSON              bool   `yaml:"log_json"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
	Pg     Pg     `yaml:"pg"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return time.Duration(c.Public.JwtTTLSeconds) * time.Second
}

func (c *Config) ResetTokenTTL() time.Duration {
	if c.Public.ResetTokenTTLSeconds == 0 {
		return defaultResetTokenTTL
	}
	return time.Duration(c.Public.ResetTokenTTLSeconds) * time.Second
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	if private.JwtKey == "" {
		panic("jwt_key is required in private.yaml")
	}
	if public.JwtTTLSeconds <= 0 {
		panic("jwt_ttl_seconds is required in public.yaml")
	}

	return &Config{public, private}
}
