package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the app-wide configuration. It is loaded once at startup.
var Conf *Config

type (
	ServerConfig struct {
		Host                      string
		Port                      int
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	GovernanceConfig struct {
		// DueSoonThresholdDays seeds the number of days before a due date at
		// which an open item is flagged as due soon. The runtime value is
		// administered via the governance service; this is only the default.
		DueSoonThresholdDays int
	}

	Config struct {
		AppName                   string
		Env                       string
		Debug                     bool
		TestMode                  bool
		Build                     string
		WorkDir                   string
		SecretKey                 string
		FrontendBaseURL           string
		DefaultFromEmail          mail.Address
		PasswordResetTimeoutDelta time.Duration
		SendgridAPIKey            string
		RollbarToken              string
		Server                    ServerConfig
		Database                  DatabaseConfig
		Governance                GovernanceConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func init() {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Uzima")
	v.SetDefault("secretKey", "w3lc0me-2-uz1ma!ch4nge-m3-1n-pr0d")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "uzima")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("governance.dueSoonThresholdDays", 7)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = &Config{
		AppName:                   v.GetString("appName"),
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		Build:                     v.GetString("build"),
		WorkDir:                   wd,
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		DefaultFromEmail:          mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		SendgridAPIKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("server.host"),
			Port:                      v.GetInt("server.port"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Governance: GovernanceConfig{
			DueSoonThresholdDays: v.GetInt("governance.dueSoonThresholdDays"),
		},
	}
}
