package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	JwtTTL             time.Duration `yaml:"jwt_ttl" validate:"required"`
	LogLevel           string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogJSON            bool          `yaml:"log_json"`
	CorsAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	SecureHeaders      bool          `yaml:"secure_headers"` // adds HSTS, enable behind TLS
	QueryTimeout       time.Duration `yaml:"query_timeout"`  // per storage round trip, 0 means default

	// per authenticated user
	UserRPS   float64 `yaml:"user_rps" validate:"gt=0"`
	UserBurst int     `yaml:"user_burst" validate:"gt=0"`
	// per client ip, applied before authentication
	IpRPS   float64 `yaml:"ip_rps" validate:"gt=0"`
	IpBurst int     `yaml:"ip_burst" validate:"gt=0"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key" validate:"required"`
	Pg     Pg     `yaml:"pg"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

// DSN returns a lib/pq key/value connection string.
func (p Pg) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Dbname)
}

// URL returns the same connection as a postgres:// url (used by migrations).
func (p Pg) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Dbname)
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err = yaml.UnmarshalStrict(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %s", configPath, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	if err := cfg.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}
	return cfg
}

func (s *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(s); err != nil {
		return err
	}
	return nil
}
