package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	NATS         NATSConfig         `mapstructure:"nats"`
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Logger       LoggerConfig       `mapstructure:"logger"`
	Scoring      ScoringConfig      `mapstructure:"scoring"`
	Learning     LearningConfig     `mapstructure:"learning"`
	Classifier   ClassifierConfig   `mapstructure:"classifier"`
	Verification VerificationConfig `mapstructure:"verification"`
	Admin        AdminConfig        `mapstructure:"admin"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	ScanCompleted  string `mapstructure:"scan_completed"`
	ModelRetrained string `mapstructure:"model_retrained"`
	ReportCreated  string `mapstructure:"report_created"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// ScoringConfig controls the rule scorer and the final blend.
// Blend lists the signals averaged into the final confidence:
// rule, learned, external, verification.
type ScoringConfig struct {
	Deterministic       bool     `mapstructure:"deterministic"`
	Blend               []string `mapstructure:"blend"`
	DangerousThreshold  int      `mapstructure:"dangerous_threshold"`
	SuspiciousThreshold int      `mapstructure:"suspicious_threshold"`
	KnownScammers       []string `mapstructure:"known_scammers"`
}

type LearningConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RetrainInterval time.Duration `mapstructure:"retrain_interval"`
	RetrainEvery    int           `mapstructure:"retrain_every"`
	Window          int           `mapstructure:"window"`
	MinSamples      int           `mapstructure:"min_samples"`
	MaxExamples     int           `mapstructure:"max_examples"`
}

// ClassifierConfig points at the external zero-shot classification service
type ClassifierConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	URL      string        `mapstructure:"url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type VerificationConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type AdminConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "insafe-lab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "0.1.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8090)
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "insafe")
	v.SetDefault("database.dbname", "insafe")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.key_prefix", "insafe:")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.stream_name", "INSAFE_SCANS")
	v.SetDefault("nats.subjects.scan_completed", "insafe.scans.completed")
	v.SetDefault("nats.subjects.model_retrained", "insafe.learning.retrained")
	v.SetDefault("nats.subjects.report_created", "insafe.reports.created")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_minute", 120)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.time_format", time.RFC3339)

	v.SetDefault("scoring.deterministic", true)
	v.SetDefault("scoring.blend", []string{"rule", "external"})
	v.SetDefault("scoring.dangerous_threshold", 70)
	v.SetDefault("scoring.suspicious_threshold", 40)
	v.SetDefault("scoring.known_scammers", []string{"+919876543210", "+911234567890"})

	v.SetDefault("learning.enabled", true)
	v.SetDefault("learning.retrain_interval", time.Hour)
	v.SetDefault("learning.retrain_every", 10)
	v.SetDefault("learning.window", 50)
	v.SetDefault("learning.min_samples", 10)
	v.SetDefault("learning.max_examples", 0)

	v.SetDefault("classifier.enabled", false)
	v.SetDefault("classifier.url", "http://localhost:8001")
	v.SetDefault("classifier.timeout", 5*time.Second)
	v.SetDefault("classifier.cache_ttl", 10*time.Minute)

	v.SetDefault("verification.enabled", true)
	v.SetDefault("verification.timeout", 3*time.Second)
	v.SetDefault("verification.refresh_interval", 5*time.Minute)
}

// Load reads configuration from file and environment variables. A .env file
// in the working directory is loaded first when present. A missing config
// file is not an error; defaults and env apply.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/insafe-lab")
	}

	v.SetEnvPrefix("INSAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// viper does not auto-bind nested keys that only exist as defaults
	for _, key := range []string{
		"app.environment",
		"database.enabled", "database.host", "database.port", "database.user",
		"database.password", "database.dbname", "database.sslmode",
		"redis.enabled", "redis.host", "redis.port", "redis.password", "redis.tls",
		"nats.enabled", "nats.url",
		"classifier.enabled", "classifier.url",
		"scoring.deterministic",
		"logger.level", "logger.format",
		"admin.api_keys",
	} {
		_ = v.BindEnv(key, "INSAFE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
	}
	_ = v.BindEnv("classifier.url", "INSAFE_CLASSIFIER_URL", "ML_SERVICE_URL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}

// Validate checks cross-field constraints that viper cannot express
func (c *Config) Validate() error {
	if c.Scoring.SuspiciousThreshold <= 0 || c.Scoring.DangerousThreshold > 100 ||
		c.Scoring.SuspiciousThreshold >= c.Scoring.DangerousThreshold {
		return fmt.Errorf("invalid scoring thresholds: suspicious=%d dangerous=%d",
			c.Scoring.SuspiciousThreshold, c.Scoring.DangerousThreshold)
	}
	for _, s := range c.Scoring.Blend {
		switch s {
		case "rule", "learned", "external", "verification":
		default:
			return fmt.Errorf("unknown blend signal %q", s)
		}
	}
	if c.Learning.RetrainEvery <= 0 {
		return fmt.Errorf("learning.retrain_every must be positive")
	}
	return nil
}
