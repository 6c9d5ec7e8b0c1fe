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

// store backends
const (
	StoreFirestore = "firestore"
	StorePostgres  = "postgres"
	StoreMemory    = "memory"
)

type (
	Config struct {
		v *viper.Viper

		Debug            bool
		TestMode         bool
		AppName          string
		Env              string
		Build            string
		WorkDir          string
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		defaultFromEmail string
		StaffEmail       string
		SiteBaseURL      string

		Server      HTTPServerConfig
		Store       StoreConfig
		Database    DatabaseConfig
		Certificate CertificateConfig
	}

	HTTPServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
	}

	StoreConfig struct {
		Backend         string
		ProjectID       string
		CredentialsFile string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	CertificateConfig struct {
		TokenTTL time.Duration
	}

	// PushCredentials holds the push provider settings. They are read on every call.
	PushCredentials struct {
		AppID   string
		APIKey  string
		BaseURL string
	}
)

// NewConfig loads the configuration from the environment (and `config/.env.<env>` if it exists).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "EduSite")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k2#v9q$u@x0-edusite-dev-only-(8wz!c1rj%m5h")
	v.SetDefault("defaultFromEmail", "EduSite <noreply@localhost>")
	v.SetDefault("staffEmail", "staff@localhost")
	v.SetDefault("siteBaseURL", "http://localhost:3000")
	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("storeBackend", StoreMemory)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "edusite")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("certificateTokenTTL", 5*365*24*time.Hour)
	v.SetDefault("onesignalBaseURL", "https://onesignal.com")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	workDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		v:                v,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Env:              env,
		Build:            v.GetString("build"),
		WorkDir:          workDir,
		SecretKey:        v.GetString("secretKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		StaffEmail:       v.GetString("staffEmail"),
		SiteBaseURL:      strings.TrimRight(v.GetString("siteBaseURL"), "/"),
		Server: HTTPServerConfig{
			Host:            v.GetString("serverHost"),
			DebugHost:       v.GetString("serverDebugHost"),
			ShutdownTimeout: v.GetDuration("serverShutdownTimeout"),
		},
		Store: StoreConfig{
			Backend:         strings.ToLower(v.GetString("storeBackend")),
			ProjectID:       v.GetString("firebaseProjectID"),
			CredentialsFile: v.GetString("firebaseCredentialsFile"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Certificate: CertificateConfig{
			TokenTTL: v.GetDuration("certificateTokenTTL"),
		},
	}
}

// PushCredentials re-reads the push provider settings, so that credentials can be rotated without a restart.
func (c *Config) PushCredentials() PushCredentials {
	if c.v == nil {
		return PushCredentials{}
	}
	return PushCredentials{
		AppID:   strings.TrimSpace(c.v.GetString("onesignalAppID")),
		APIKey:  strings.TrimSpace(c.v.GetString("onesignalApiKey")),
		BaseURL: strings.TrimRight(c.v.GetString("onesignalBaseURL"), "/"),
	}
}

// Set overrides a setting at runtime. Mostly useful in tests.
func (c *Config) Set(key string, value interface{}) {
	if c.v == nil {
		c.v = viper.New()
	}
	c.v.Set(key, value)
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
	}
	return *addr
}

func (c *Config) StaffAddress() mail.Address {
	return mail.Address{Name: c.AppName + " Staff", Address: c.StaffEmail}
}

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// NewTestConfig returns a Config suitable for tests, without touching the environment.
func NewTestConfig() *Config {
	return &Config{
		v:                viper.New(),
		Debug:            false,
		TestMode:         true,
		AppName:          "EduSite",
		Env:              "TEST",
		Build:            "test",
		SecretKey:        "test-secret-key",
		defaultFromEmail: "EduSite <noreply@test.local>",
		StaffEmail:       "staff@test.local",
		SiteBaseURL:      "http://edusite.test",
		Server: HTTPServerConfig{
			ShutdownTimeout: time.Second,
		},
		Store: StoreConfig{Backend: StoreMemory},
		Certificate: CertificateConfig{
			TokenTTL: time.Hour,
		},
	}
}
