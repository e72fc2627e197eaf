package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Cfg struct {
	Database   Database
	Logger     Logger
	Browser    Browser
	Agent      Agent
	Patterns   Patterns
	HTTP       HTTP
	Migrations Migrations
}

type Database struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// Enabled reports whether persistence was configured at all.
func (d Database) Enabled() bool {
	return d.Host != ""
}

// DSN is the key/value form used by the gorm postgres driver.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// URL is the postgres:// form used by migrate.
func (d Database) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

type Migrations struct {
	Path string
}

type Logger struct {
	Env   string
	Level string
}

type Browser struct {
	Driver       string
	Engine       string
	Display      string
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	RemoteURL    string
	Stealth      bool
}

type Agent struct {
	ExpandDelay         time.Duration
	ToggleDelay         time.Duration
	RescanInterval      time.Duration
	CookieSweepInterval time.Duration
	RequireDialogHint   bool
}

type Patterns struct {
	File string
}

type HTTP struct {
	Host string
	Port string
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Database: Database{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
		},
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
		},
		Browser: Browser{
			Driver:       env("BROWSER_DRIVER", "playwright"),
			Engine:       env("BROWSER_ENGINE", "firefox"),
			Display:      os.Getenv("DISPLAY"),
			Headless:     envBool("PW_HEADLESS", true),
			UserDataDir:  os.Getenv("PW_USER_DATA_DIR"),
			BrowsersPath: os.Getenv("PLAYWRIGHT_BROWSERS_PATH"),
			RemoteURL:    os.Getenv("ROD_REMOTE_URL"),
			Stealth:      envBool("ROD_STEALTH", true),
		},
		Agent: Agent{
			ExpandDelay:         envDuration("AGENT_EXPAND_DELAY", 800*time.Millisecond),
			ToggleDelay:         envDuration("AGENT_TOGGLE_DELAY", 500*time.Millisecond),
			RescanInterval:      envDuration("AGENT_RESCAN_INTERVAL", 2500*time.Millisecond),
			CookieSweepInterval: envDuration("COOKIE_SWEEP_INTERVAL", 5*time.Second),
			RequireDialogHint:   envBool("AGENT_REQUIRE_DIALOG_HINT", true),
		},
		Patterns: Patterns{
			File: os.Getenv("PATTERNS_FILE"),
		},
		HTTP: HTTP{
			Host: env("HTTP_HOST", "127.0.0.1"),
			Port: env("HTTP_PORT", "8089"),
		},
		Migrations: Migrations{
			Path: env("MIGRATIONS_PATH", "file://migrations"),
		},
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return defaultValue
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// envDuration accepts Go durations ("800ms") or bare milliseconds ("800").
func envDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return defaultValue
}
