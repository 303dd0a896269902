package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env              string // DEV (local; default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		Build            string
		AppName          string
		SecretKey        string
		RollbarToken     string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address
		SendgridAPIKey   string

		Server   ServerConfig
		Database DatabaseConfig
		Portal   PortalConfig
	}

	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
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

	// PortalConfig drives the terminal portal and its navigation core.
	PortalConfig struct {
		BaseURL          string
		SessionFile      string
		DefaultTTL       time.Duration
		VolatileTTL      time.Duration
		LoadingTimeout   time.Duration
		ToastDuration    time.Duration
		NarrowBreakpoint int
	}
)

func (dc DatabaseConfig) Address() string {
	return net.JoinHostPort(dc.Host, strconv.Itoa(dc.Port))
}

// NewConfig loads `config/.env.<env>` (if it exists) then reads every setting from the environment.
// Env vars are prefixed with the upper-cased env name, eg. DEV_DATABASE_NAME.
func NewConfig() *Config {
	v := viper.New()

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "NACOS Complaint System")
	v.SetDefault("secretKey", "nbq7-qnc)erw$+31=kz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("defaultFromEmail", "NACOS <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server_host", "localhost")
	v.SetDefault("server_address", ":8000")
	v.SetDefault("server_debugHost", ":4000")
	v.SetDefault("server_shutdownTimeout", 5*time.Second)
	v.SetDefault("server_jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("server_jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database_engine", "postgres")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 5432)
	v.SetDefault("database_name", "nacos")
	v.SetDefault("database_user", "nacos")
	v.SetDefault("database_password", "nacos")
	v.SetDefault("database_adminUser", "postgres")
	v.SetDefault("database_adminPassword", "postgres")
	v.SetDefault("database_disableTLS", env == "DEV" || env == "TEST")

	v.SetDefault("portal_baseURL", "http://localhost:8000")
	v.SetDefault("portal_sessionFile", defaultSessionFile())
	v.SetDefault("portal_defaultTTL", 5*time.Minute)
	v.SetDefault("portal_volatileTTL", time.Minute)
	v.SetDefault("portal_loadingTimeout", 30*time.Second)
	v.SetDefault("portal_toastDuration", 5*time.Second)
	v.SetDefault("portal_narrowBreakpoint", 768)

	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	return &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: *from,
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		Server: ServerConfig{
			Host:                      v.GetString("server_host"),
			Address:                   v.GetString("server_address"),
			DebugHost:                 v.GetString("server_debugHost"),
			ShutdownTimeout:           v.GetDuration("server_shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server_jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server_jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database_engine"),
			Host:          v.GetString("database_host"),
			Port:          v.GetInt("database_port"),
			Name:          v.GetString("database_name"),
			User:          v.GetString("database_user"),
			Password:      v.GetString("database_password"),
			AdminUser:     v.GetString("database_adminUser"),
			AdminPassword: v.GetString("database_adminPassword"),
			DisableTLS:    v.GetBool("database_disableTLS"),
		},
		Portal: PortalConfig{
			BaseURL:          v.GetString("portal_baseURL"),
			SessionFile:      v.GetString("portal_sessionFile"),
			DefaultTTL:       v.GetDuration("portal_defaultTTL"),
			VolatileTTL:      v.GetDuration("portal_volatileTTL"),
			LoadingTimeout:   v.GetDuration("portal_loadingTimeout"),
			ToastDuration:    v.GetDuration("portal_toastDuration"),
			NarrowBreakpoint: v.GetInt("portal_narrowBreakpoint"),
		},
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "nacos", "session.yaml")
}
