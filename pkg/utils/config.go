package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration, loaded from a TOML file
// with environment variable overrides for the deployment-sensitive values.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Media    MediaConfig    `toml:"media"`
	CMS      CMSConfig      `toml:"cms"`
	Auth     AuthConfig     `toml:"auth"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type DatabaseConfig struct {
	// Path is the SQLite file location. Empty means the per-user default
	// under ~/.venuehub.
	Path string `toml:"path"`
}

// MediaConfig describes where audio lives on disk and how scan paths map
// to the logical paths the streaming endpoint serves.
type MediaConfig struct {
	// Root is the directory outside of which nothing is ever served.
	Root string `toml:"root"`
	// ScanDir is the directory the reconciliation job scans and uploads
	// land in. It must sit inside Root for its files to be streamable.
	ScanDir string `toml:"scan_dir"`
	// ServePrefix is the logical prefix scan-dir files are addressed by,
	// e.g. "audio" makes ScanDir/x.mp3 reachable as file=audio/x.mp3.
	ServePrefix string `toml:"serve_prefix"`
	// FallbackDir is the secondary content directory searched by base
	// name when a file is missing from Root.
	FallbackDir string `toml:"fallback_dir"`
}

type CMSConfig struct {
	URL      string `toml:"url"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	JWTIssuer string `toml:"jwt_issuer"`
	// JWTTTLHours is the admin session lifetime in hours.
	JWTTTLHours int `toml:"jwt_ttl_hours"`
	// AdminHash is the bcrypt hash of the admin panel password.
	AdminHash string `toml:"admin_hash"`
}

func (a AuthConfig) JWTDuration() time.Duration {
	if a.JWTTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.JWTTTLHours) * time.Hour
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Media: MediaConfig{
			Root:        "./data",
			ScanDir:     "./data/audio",
			ServePrefix: "audio",
			FallbackDir: "./content/recordings",
		},
		CMS: CMSConfig{URL: "http://localhost:8000/api/query"},
		Auth: AuthConfig{
			JWTIssuer:   "venuehub",
			JWTTTLHours: 24,
		},
	}
}

// Load reads the TOML config at path (skipped when path is empty or the
// file does not exist) on top of the defaults, then applies env overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.Auth.JWTSecret == "" {
		// dev default (change for demo / production)
		cfg.Auth.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("VENUEHUB_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("VENUEHUB_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("VENUEHUB_MEDIA_ROOT"); v != "" {
		cfg.Media.Root = v
	}
	if v := os.Getenv("VENUEHUB_SCAN_DIR"); v != "" {
		cfg.Media.ScanDir = v
	}
	if v := os.Getenv("VENUEHUB_FALLBACK_DIR"); v != "" {
		cfg.Media.FallbackDir = v
	}
	if v := os.Getenv("VENUEHUB_CMS_URL"); v != "" {
		cfg.CMS.URL = v
	}
	if v := os.Getenv("VENUEHUB_CMS_USER"); v != "" {
		cfg.CMS.User = v
	}
	if v := os.Getenv("VENUEHUB_CMS_PASSWORD"); v != "" {
		cfg.CMS.Password = v
	}
	if v := os.Getenv("VENUEHUB_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("VENUEHUB_JWT_ISSUER"); v != "" {
		cfg.Auth.JWTIssuer = v
	}
	if v := os.Getenv("VENUEHUB_JWT_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Auth.JWTTTLHours = n
		}
	}
	if v := os.Getenv("VENUEHUB_ADMIN_HASH"); v != "" {
		cfg.Auth.AdminHash = v
	}
}
