package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	DriverPostgres = "postgres"
	DriverMySql    = "mysql"
	DriverSqlite   = "sqlite"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env-default:"8080"`
	// RequestTimeout bounds every API request context.
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// Store selects the relational persistence client.
type Store struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"sqlite"`
	// Dsn is a postgres URL, a go-sql-driver/mysql DSN or a sqlite file path.
	Dsn string `yaml:"dsn" env:"STORE_DSN" env-default:"liveqa.db"`
}

type Mongo struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	Host     string `yaml:"host" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
	Database string `yaml:"database" env-default:"liveqa"`
}

type Auth struct {
	JwtSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:""`
	TokenTTL   time.Duration `yaml:"token_ttl" env-default:"24h"`
	BcryptCost int           `yaml:"bcrypt_cost" env-default:"10"`
}

type Invite struct {
	TTL time.Duration `yaml:"ttl" env-default:"72h"`
	// BaseUrl is the public address of the client application used in invite links.
	BaseUrl string `yaml:"base_url" env-default:"http://localhost:3000"`
}

type Telegram struct {
	Enabled  bool    `yaml:"enabled" env-default:"false"`
	ApiKey   string  `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
	AdminIds []int64 `yaml:"admin_ids"`
	// LogLevel is the minimal slog level forwarded to admin chats.
	LogLevel string `yaml:"log_level" env-default:"error"`
	// DigestInterval batches records below error level; zero sends them at once.
	DigestInterval time.Duration `yaml:"digest_interval" env-default:"10m"`
}

type Config struct {
	Env      string   `yaml:"env" env:"ENV" env-default:"local"`
	Listen   Listen   `yaml:"listen"`
	Store    Store    `yaml:"store"`
	Mongo    Mongo    `yaml:"mongo"`
	Auth     Auth     `yaml:"auth"`
	Invite   Invite   `yaml:"invite"`
	Telegram Telegram `yaml:"telegram"`
}

// Load reads the YAML file at path, applying environment overrides.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		return nil, fmt.Errorf("config: %s; %s", err, desc)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: invalid environment %q", c.Env)
	}
	switch c.Store.Driver {
	case DriverPostgres, DriverMySql, DriverSqlite:
	default:
		return fmt.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.Dsn == "" {
		return fmt.Errorf("config: store dsn is empty")
	}
	if c.Env != EnvLocal && c.Auth.JwtSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required in %s", c.Env)
	}
	if c.Auth.TokenTTL <= 0 || c.Invite.TTL <= 0 {
		return fmt.Errorf("config: token and invite ttl must be positive")
	}
	if c.Telegram.Enabled && c.Telegram.ApiKey == "" {
		return fmt.Errorf("config: telegram is enabled without api_key")
	}
	return nil
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	once.Do(func() {
		var err error
		instance, err = Load(path)
		if err != nil {
			log.Fatal(err)
		}
	})
	return instance
}
