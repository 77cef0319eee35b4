package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config defines host configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Store     StoreConfig     `yaml:"store"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig is the panel server.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	OpenBrowser bool   `yaml:"open_browser"`
}

// AuthConfig is the loopback login listener.
type AuthConfig struct {
	Host      string     `yaml:"host"`
	Port      int        `yaml:"port"`
	StaticDir string     `yaml:"static_dir"`
	OIDC      OIDCConfig `yaml:"oidc"`
}

type OIDCConfig struct {
	Issuer       string `yaml:"issuer"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// DBConfig is the local sqlite database holding the session and, for the
// sqlite backend, the projects.
type DBConfig struct {
	Path string `yaml:"path"`
}

type StoreConfig struct {
	Backend              string `yaml:"backend"`
	PostgresURL          string `yaml:"postgres_url"`
	FirestoreProject     string `yaml:"firestore_project"`
	FirestoreCredentials string `yaml:"firestore_credentials"`
}

type WorkspaceConfig struct {
	Folders []string `yaml:"folders"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        4300,
			OpenBrowser: true,
		},
		Auth: AuthConfig{
			Host: "localhost",
			Port: 4200,
		},
		DB: DBConfig{
			Path: "filetracker.db",
		},
		Store: StoreConfig{
			Backend: BackendSQLite,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("FILETRACKER_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("FILETRACKER_SERVER_HOST", &cfg.Server.Host)
	if err := setInt("FILETRACKER_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if v := os.Getenv("FILETRACKER_OPEN_BROWSER"); v != "" {
		open, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid FILETRACKER_OPEN_BROWSER: %w", err)
		}
		cfg.Server.OpenBrowser = open
	}

	setString("FILETRACKER_AUTH_HOST", &cfg.Auth.Host)
	if err := setInt("FILETRACKER_AUTH_PORT", &cfg.Auth.Port); err != nil {
		return err
	}
	setString("FILETRACKER_AUTH_STATIC_DIR", &cfg.Auth.StaticDir)
	setString("FILETRACKER_OIDC_ISSUER", &cfg.Auth.OIDC.Issuer)
	setString("FILETRACKER_OIDC_CLIENT_ID", &cfg.Auth.OIDC.ClientID)
	setString("FILETRACKER_OIDC_CLIENT_SECRET", &cfg.Auth.OIDC.ClientSecret)

	setString("FILETRACKER_DB_PATH", &cfg.DB.Path)
	setString("FILETRACKER_STORE_BACKEND", &cfg.Store.Backend)
	setString("FILETRACKER_POSTGRES_URL", &cfg.Store.PostgresURL)
	setString("FILETRACKER_FIRESTORE_PROJECT", &cfg.Store.FirestoreProject)
	setString("FILETRACKER_FIRESTORE_CREDENTIALS", &cfg.Store.FirestoreCredentials)

	if v := os.Getenv("FILETRACKER_WORKSPACE"); v != "" {
		cfg.Workspace.Folders = filepath.SplitList(v)
	}

	setString("FILETRACKER_LOG_LEVEL", &cfg.Log.Level)
	setString("FILETRACKER_LOG_PATH", &cfg.Log.Path)
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := validPort("server.port", c.Server.Port); err != nil {
		return err
	}
	if err := validPort("auth.port", c.Auth.Port); err != nil {
		return err
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("%w: db.path is required", ErrInvalid)
	}

	switch c.Store.Backend {
	case BackendSQLite:
	case BackendPostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("%w: store.postgres_url is required for the postgres backend", ErrInvalid)
		}
	case BackendFirestore:
		if c.Store.FirestoreProject == "" {
			return fmt.Errorf("%w: store.firestore_project is required for the firestore backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalid, c.Store.Backend)
	}

	if (c.Auth.OIDC.Issuer == "") != (c.Auth.OIDC.ClientID == "") {
		return fmt.Errorf("%w: auth.oidc needs both issuer and client_id", ErrInvalid)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

func validPort(name string, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: %s %d out of range", ErrInvalid, name, port)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
