package core

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers
const (
	DriverSqlx   = "sqlx"
	DriverGorm   = "gorm"
	DriverMemory = "memory"
)

// Session backends
const (
	SessionMemory = "memory"
	SessionBolt   = "bolt"
	SessionRedis  = "redis"
)

type (
	ServerConfig struct {
		Address         string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	DatabaseConfig struct {
		Driver        string
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	SessionConfig struct {
		Backend   string
		BoltPath  string
		RedisURL  string
		KeyPrefix string
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		RollbarToken     string
		HackerModeSwitch string

		Server   ServerConfig
		Database DatabaseConfig
		Session  SessionConfig
	}
)

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d", dc.Host, dc.Port)
}

// NewConfig reads the configuration from the environment.
// ENV selects the environment (DEV by default) and doubles as the variables' prefix, eg: DEV_DATABASE_HOST.
func NewConfig() *Config {
	conf := viper.New()

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", env == "DEV")
	conf.SetDefault("testMode", env == "TEST")
	conf.SetDefault("appName", "LMS")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("hackerModeSwitch", "hacker_mode")

	conf.SetDefault("server.address", ":5001")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.disableReqLogs", false)

	conf.SetDefault("database.driver", DriverSqlx)
	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "lms")
	conf.SetDefault("database.user", "lms")
	conf.SetDefault("database.password", "lms")
	conf.SetDefault("database.adminUser", "")
	conf.SetDefault("database.adminPassword", "")
	conf.SetDefault("database.disableTLS", env == "DEV" || env == "TEST")

	conf.SetDefault("session.backend", SessionMemory)
	conf.SetDefault("session.boltPath", filepath.Join("var", "sessions.db"))
	conf.SetDefault("session.redisURL", "redis://localhost:6379/0")
	conf.SetDefault("session.keyPrefix", "lms:session:")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()

	return &Config{
		Env:              env,
		Build:            conf.GetString("build"),
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		AppName:          conf.GetString("appName"),
		RollbarToken:     conf.GetString("rollbarToken"),
		HackerModeSwitch: conf.GetString("hackerModeSwitch"),
		Server: ServerConfig{
			Address:         conf.GetString("server.address"),
			ShutdownTimeout: conf.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  conf.GetBool("server.disableReqLogs"),
		},
		Database: DatabaseConfig{
			Driver:        conf.GetString("database.driver"),
			Engine:        conf.GetString("database.engine"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetInt("database.port"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Session: SessionConfig{
			Backend:   conf.GetString("session.backend"),
			BoltPath:  conf.GetString("session.boltPath"),
			RedisURL:  conf.GetString("session.redisURL"),
			KeyPrefix: conf.GetString("session.keyPrefix"),
		},
	}
}
