package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort           string
	Mode               string // debug or release
	DatabaseDSN        string
	DBMaxIdleConns     int
	DBMaxOpenConns     int
	JWTSecret          string
	SignupSecurityCode string
	CORSOrigins        string
	RoleFailOpen       bool   // unreadable role => accountant
}

// MissingError is returned when required settings are absent or invalid.
type MissingError struct {
	Keys      []string
	Checklist []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing or invalid configuration: %s", strings.Join(e.Keys, ", "))
}

var checklist = []string{
	".env file exists in the working directory or variables are exported",
	"DATABASE_DSN points at a reachable PostgreSQL database",
	"JWT_SECRET is set and at least 32 characters long",
	"SIGNUP_SECURITY_CODE is set",
	"the database schema can be migrated by this user",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("APP_MODE", "release")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("ROLE_FAIL_OPEN", true)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_MAX_OPEN_CONNS", 20)

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPPort:           v.GetString("HTTP_PORT"),
		Mode:               v.GetString("APP_MODE"),
		DatabaseDSN:        strings.TrimSpace(v.GetString("DATABASE_DSN")),
		DBMaxIdleConns:     v.GetInt("DB_MAX_IDLE_CONNS"),
		DBMaxOpenConns:     v.GetInt("DB_MAX_OPEN_CONNS"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		SignupSecurityCode: strings.TrimSpace(v.GetString("SIGNUP_SECURITY_CODE")),
		CORSOrigins:        v.GetString("CORS_ALLOWED_ORIGINS"),
		RoleFailOpen:       v.GetBool("ROLE_FAIL_OPEN"),
	}

	var missing []string
	if cfg.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if len(cfg.JWTSecret) < 32 {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.SignupSecurityCode == "" {
		missing = append(missing, "SIGNUP_SECURITY_CODE")
	}
	if len(missing) > 0 {
		return nil, &MissingError{Keys: missing, Checklist: checklist}
	}

	return cfg, nil
}
