package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Share     ShareConfig     `mapstructure:"share"`
	Catalogue CatalogueConfig `mapstructure:"catalogue"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	BindAddr     string `mapstructure:"bind_addr"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig selects and configures the share-link store
type DatabaseConfig struct {
	Driver        string `mapstructure:"driver"` // sqlite or postgres
	Path          string `mapstructure:"path"`
	DSN           string `mapstructure:"dsn"`
	BusyTimeoutMs int    `mapstructure:"busy_timeout_ms"`
	MaxConns      int32  `mapstructure:"max_conns"`
}

// RedisConfig configures the optional role cache. Empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig contains identity provider settings
type AuthConfig struct {
	JWTSecret    string `mapstructure:"jwt_secret"`
	Issuer       string `mapstructure:"issuer"`
	RoleCacheTTL string `mapstructure:"role_cache_ttl"`
}

// RemoteConfig contains settings for the remote file host
type RemoteConfig struct {
	Protocol          string `mapstructure:"protocol"` // sftp or ftps
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	PrivateKeyPath    string `mapstructure:"private_key_path"`
	HostKey           string `mapstructure:"host_key"`
	SkipTLSVerify     bool   `mapstructure:"skip_tls_verify"`
	ConnectTimeout    string `mapstructure:"connect_timeout"`
	ConnectRetries    int    `mapstructure:"connect_retries"`
	RetryDelay        string `mapstructure:"retry_delay"`
	KeepaliveInterval string `mapstructure:"keepalive_interval"`
	MaxSearchDepth    int    `mapstructure:"max_search_depth"`
}

// StorageConfig maps upload categories onto the remote tree
type StorageConfig struct {
	BasePath        string `mapstructure:"base_path"`
	AdminRoot       string `mapstructure:"admin_root"`
	PublicRoot      string `mapstructure:"public_root"`
	PublicURLPrefix string `mapstructure:"public_url_prefix"`
}

// UploadConfig contains upload limits
type UploadConfig struct {
	MaxFileSizeMB        int      `mapstructure:"max_file_size_mb"`
	MaxAdminFileSizeMB   int      `mapstructure:"max_admin_file_size_mb"`
	MaxActiveSubmissions int      `mapstructure:"max_active_submissions"`
	AllowedDemoMIMETypes []string `mapstructure:"allowed_demo_mime_types"`
}

// ShareConfig contains share-link settings
type ShareConfig struct {
	PublicBaseURL         string `mapstructure:"public_base_url"`
	SweepSchedule         string `mapstructure:"sweep_schedule"`
	PasswordRetryInterval string `mapstructure:"password_retry_interval"`
}

// CatalogueConfig points at the catalogue source files
type CatalogueConfig struct {
	ArtistsFile  string `mapstructure:"artists_file"`
	ReleasesFile string `mapstructure:"releases_file"`
}

// Load loads configuration from the specified file path. A .env file in the
// working directory is loaded first, and LABEL_PORTAL_* environment variables
// override file values (e.g. LABEL_PORTAL_REMOTE_PASSWORD).
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("LABEL_PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.bind_addr", "0.0.0.0:3001")
	v.SetDefault("http.read_timeout", "60s")
	v.SetDefault("http.write_timeout", "120s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "label-portal.db")
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.role_cache_ttl", "5m")
	v.SetDefault("remote.protocol", "sftp")
	v.SetDefault("remote.port", 22)
	v.SetDefault("remote.skip_tls_verify", false)
	v.SetDefault("remote.connect_timeout", "20s")
	v.SetDefault("remote.connect_retries", 3)
	v.SetDefault("remote.retry_delay", "2s")
	v.SetDefault("remote.keepalive_interval", "10s")
	v.SetDefault("remote.max_search_depth", 32)
	v.SetDefault("storage.base_path", "/")
	v.SetDefault("storage.admin_root", "")
	v.SetDefault("storage.public_root", "public")
	v.SetDefault("upload.max_file_size_mb", 100)
	v.SetDefault("upload.max_admin_file_size_mb", 2048)
	v.SetDefault("upload.max_active_submissions", 3)
	v.SetDefault("upload.allowed_demo_mime_types", []string{
		"audio/mpeg", "audio/wav", "audio/x-wav", "audio/flac", "audio/x-flac", "audio/aiff", "audio/x-aiff",
	})
	v.SetDefault("share.sweep_schedule", "@every 1h")
	v.SetDefault("share.password_retry_interval", "2s")
	v.SetDefault("catalogue.artists_file", "data/artists.ts")
	v.SetDefault("catalogue.releases_file", "data/releases.ts")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("invalid database.driver: %s", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch c.Remote.Protocol {
	case "sftp", "ftps":
	default:
		return fmt.Errorf("invalid remote.protocol: %s", c.Remote.Protocol)
	}
	if c.Remote.Host == "" {
		return fmt.Errorf("remote.host is required")
	}
	if c.Remote.Username == "" {
		return fmt.Errorf("remote.username is required")
	}
	if c.Remote.Password == "" && c.Remote.PrivateKeyPath == "" {
		return fmt.Errorf("remote.password or remote.private_key_path is required")
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		return fmt.Errorf("remote.port must be between 1 and 65535")
	}

	if c.Storage.PublicURLPrefix == "" {
		return fmt.Errorf("storage.public_url_prefix is required")
	}
	if c.Share.PublicBaseURL == "" {
		return fmt.Errorf("share.public_base_url is required")
	}

	if c.Upload.MaxFileSizeMB <= 0 || c.Upload.MaxAdminFileSizeMB <= 0 {
		return fmt.Errorf("upload size limits must be positive")
	}
	if c.Upload.MaxActiveSubmissions < 1 {
		return fmt.Errorf("upload.max_active_submissions must be at least 1")
	}

	durations := map[string]string{
		"http.read_timeout":             c.HTTP.ReadTimeout,
		"http.write_timeout":            c.HTTP.WriteTimeout,
		"http.idle_timeout":             c.HTTP.IdleTimeout,
		"auth.role_cache_ttl":           c.Auth.RoleCacheTTL,
		"remote.connect_timeout":        c.Remote.ConnectTimeout,
		"remote.retry_delay":            c.Remote.RetryDelay,
		"remote.keepalive_interval":     c.Remote.KeepaliveInterval,
		"share.password_retry_interval": c.Share.PasswordRetryInterval,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, _ := time.ParseDuration(value)
	if d == 0 {
		return fallback
	}
	return d
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 60*time.Second)
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 120*time.Second)
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	return parseDuration(c.IdleTimeout, 60*time.Second)
}

// GetRoleCacheTTL returns how long admin role lookups are cached
func (c *AuthConfig) GetRoleCacheTTL() time.Duration {
	return parseDuration(c.RoleCacheTTL, 5*time.Minute)
}

// GetConnectTimeout returns the handshake timeout
func (c *RemoteConfig) GetConnectTimeout() time.Duration {
	return parseDuration(c.ConnectTimeout, 20*time.Second)
}

// GetRetryDelay returns the delay between handshake attempts
func (c *RemoteConfig) GetRetryDelay() time.Duration {
	return parseDuration(c.RetryDelay, 2*time.Second)
}

// GetKeepaliveInterval returns the keep-alive period
func (c *RemoteConfig) GetKeepaliveInterval() time.Duration {
	return parseDuration(c.KeepaliveInterval, 10*time.Second)
}

// Addr returns host:port of the remote file host
func (c *RemoteConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetMaxFileSize returns the end-user upload limit in bytes
func (c *UploadConfig) GetMaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// GetMaxAdminFileSize returns the admin upload limit in bytes
func (c *UploadConfig) GetMaxAdminFileSize() int64 {
	return int64(c.MaxAdminFileSizeMB) * 1024 * 1024
}

// GetPasswordRetryInterval returns the lockout after a failed share password
func (c *ShareConfig) GetPasswordRetryInterval() time.Duration {
	return parseDuration(c.PasswordRetryInterval, 2*time.Second)
}
