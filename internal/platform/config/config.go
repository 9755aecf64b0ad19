package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Storage      StorageConfig      `yaml:"storage"`
	Logger       LoggerConfig       `yaml:"logger"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Events       EventsConfig       `yaml:"events"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// HTTPConfig は REST API に関する設定です。ListenAddr が空の場合 REST API は起動しません。
type HTTPConfig struct {
	ListenAddr      string          `yaml:"listen_addr"`
	ReadTimeout     time.Duration   `yaml:"-"`
	WriteTimeout    time.Duration   `yaml:"-"`
	ReadTimeoutRaw  string          `yaml:"read_timeout"`
	WriteTimeoutRaw string          `yaml:"write_timeout"`
	CORS            CORSConfig      `yaml:"cors"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig は CORS の許可設定です。
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig はリクエスト数の制限です。RPS が 0 の場合は制限しません。
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// StorageConfig は永続化先の選択です。
type StorageConfig struct {
	Driver string `yaml:"driver"`
}

// LoggerConfig はログ出力の設定です。
type LoggerConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	DBTraceLevel string `yaml:"db_trace_level"`
}

// OrchestratorConfig は複合ワークフローの実行方針です。
type OrchestratorConfig struct {
	Atomic bool `yaml:"atomic"`
}

// EventsConfig はドメインイベント送出の設定です。
type EventsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	URL           string        `yaml:"url"`
	Exchange      string        `yaml:"exchange"`
	Producer      string        `yaml:"producer"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"-"`
	RetryDelayRaw string        `yaml:"retry_delay"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
// ファイル中の ${VAR} と ${VAR:-default} は環境変数で置き換えられます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandEnv(string(b))), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envPattern.FindStringSubmatch(match)
		if value := os.Getenv(m[1]); value != "" {
			return value
		}
		return m[2]
	})
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	timeout, err := parseDurationAllowEmpty(c.Server.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	c.Server.ShutdownTimeout = timeout

	if err := c.HTTP.validateAndNormalize(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = StorageDriverPostgres
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("config: storage.driver must be %q or %q, got %q", StorageDriverPostgres, StorageDriverMemory, c.Storage.Driver)
	}

	if c.Storage.Driver == StorageDriverPostgres {
		db := &c.Database
		if err := db.validateAndNormalize(); err != nil {
			return err
		}
	}

	if err := c.Logger.validateAndNormalize(); err != nil {
		return err
	}

	return c.Events.validateAndNormalize()
}

func (h *HTTPConfig) validateAndNormalize() error {
	read, err := parseDurationAllowEmpty(h.ReadTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: http.read_timeout: %w", err)
	}
	if read == 0 {
		read = 15 * time.Second
	}
	h.ReadTimeout = read

	write, err := parseDurationAllowEmpty(h.WriteTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: http.write_timeout: %w", err)
	}
	if write == 0 {
		write = 15 * time.Second
	}
	h.WriteTimeout = write

	if h.RateLimit.RPS < 0 {
		return fmt.Errorf("config: http.rate_limit.rps must not be negative")
	}
	if h.RateLimit.RPS > 0 && h.RateLimit.Burst <= 0 {
		h.RateLimit.Burst = int(h.RateLimit.RPS) + 1
	}
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (l *LoggerConfig) validateAndNormalize() error {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
	if l.Format != "json" && l.Format != "console" {
		return fmt.Errorf("config: logger.format must be json or console, got %q", l.Format)
	}
	if l.DBTraceLevel == "" {
		l.DBTraceLevel = "none"
	}
	return nil
}

func (e *EventsConfig) validateAndNormalize() error {
	if !e.Enabled {
		return nil
	}
	if e.URL == "" {
		return fmt.Errorf("config: events.url must be set when events are enabled")
	}
	if e.Exchange == "" {
		e.Exchange = "crm.events"
	}
	if e.Producer == "" {
		e.Producer = "codex-crm"
	}
	if e.RetryAttempts <= 0 {
		e.RetryAttempts = 5
	}
	delay, err := parseDurationAllowEmpty(e.RetryDelayRaw)
	if err != nil {
		return fmt.Errorf("config: events.retry_delay: %w", err)
	}
	if delay == 0 {
		delay = time.Second
	}
	e.RetryDelay = delay
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(strings.TrimSpace(d.SSLMode)),
	}
	return u.String()
}
