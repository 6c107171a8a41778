package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all app settings. It is loaded once at startup and passed
// explicitly to whatever needs it.
type Config struct {
	Debug           bool
	TestMode        bool
	Env             string // DEV (default) | TEST | QA | PROD
	Build           string
	AppName         string
	SecretKey       []byte
	WorkDir         string
	FrontendBaseURL string

	DefaultFromEmail          mail.Address
	SendgridAPIKey            string
	RollbarToken              string
	PasswordResetTimeoutDelta time.Duration

	Server struct {
		Host                      string
		Port                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		AllowedOrigins            []string
	}

	Database struct {
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
}

func (conf *Config) Address() string {
	return net.JoinHostPort(conf.Server.Host, conf.Server.Port)
}

func (conf *Config) DatabaseAddress() string {
	return net.JoinHostPort(conf.Database.Host, conf.Database.Port)
}

func NewConfig(build string) *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Kozi")
	v.SetDefault("secretKey", "h2(h!x)#*c2(#yg4h^$cegm2emypoq5-wer)enb$+57=dz&uox")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("allowedOrigins", []string{"*"})

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "kozi")
	v.SetDefault("databaseUser", "kozi")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseAdminUser", "")
	v.SetDefault("databaseAdminPassword", "")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseDisableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        env == "TEST",
		Env:             env,
		Build:           build,
		AppName:         v.GetString("appName"),
		SecretKey:       []byte(v.GetString("secretKey")),
		WorkDir:         wd,
		FrontendBaseURL: v.GetString("frontendBaseURL"),

		DefaultFromEmail:          mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Port = v.GetString("serverPort")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("jwtRefreshExpirationDelta")
	conf.Server.AllowedOrigins = v.GetStringSlice("allowedOrigins")

	conf.Database.Engine = v.GetString("databaseEngine")
	conf.Database.Name = v.GetString("databaseName")
	conf.Database.User = v.GetString("databaseUser")
	conf.Database.Password = v.GetString("databasePassword")
	conf.Database.AdminUser = v.GetString("databaseAdminUser")
	conf.Database.AdminPassword = v.GetString("databaseAdminPassword")
	conf.Database.Host = v.GetString("databaseHost")
	conf.Database.Port = v.GetString("databasePort")
	conf.Database.DisableTLS = v.GetBool("databaseDisableTLS")
	return conf
}
