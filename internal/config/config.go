package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "MEDVAULT"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	S3          S3Config
	Log         LogConfig
	CORS        CORSConfig
	Queue       QueueConfig
	Email       EmailConfig
	OCR         OCRConfig
	CardParser  CardParserConfig
	Terminology TerminologyConfig
	Share       ShareConfig
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// QueueConfig holds scan queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	MaxRetries       int `mapstructure:"max_retries"`
	Concurrency      int `mapstructure:"concurrency"`
	BatchSize        int `mapstructure:"batch_size"`
	StaleAfterSecs   int `mapstructure:"stale_after_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OCRConfig selects and tunes the OCR engine used for card images.
type OCRConfig struct {
	Engine    string   `mapstructure:"engine"`
	Languages []string `mapstructure:"languages"`
	DPI       int      `mapstructure:"dpi"`
}

// CardParserProviderConfig holds settings for a single card parse provider.
type CardParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// CardParserConfig holds card parser settings with multi-provider support.
type CardParserConfig struct {
	Mode      string                   `mapstructure:"mode"`
	Primary   CardParserProviderConfig `mapstructure:"primary"`
	Secondary CardParserProviderConfig `mapstructure:"secondary"`
	Tertiary  CardParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config. An unset provider means the
// built-in OCR provider.
func (p *CardParserConfig) PrimaryConfig() *CardParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	primary := p.Primary
	primary.Provider = "ocr"
	return &primary
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *CardParserConfig) SecondaryConfig() *CardParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *CardParserConfig) TertiaryConfig() *CardParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// TerminologyConfig holds settings for the autocomplete search layer.
type TerminologyConfig struct {
	ConditionsURL     string        `mapstructure:"conditions_url"`
	MedicationsURL    string        `mapstructure:"medications_url"`
	ProvidersURL      string        `mapstructure:"providers_url"`
	TimeoutSecs       int           `mapstructure:"timeout_secs"`
	MaxRetries        int           `mapstructure:"max_retries"`
	MinQueryLength    int           `mapstructure:"min_query_length"`
	DefaultLimit      int           `mapstructure:"default_limit"`
	MaxLimit          int           `mapstructure:"max_limit"`
	CacheSize         int           `mapstructure:"cache_size"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	DefaultRetryAfter time.Duration `mapstructure:"default_retry_after"`
}

// ShareConfig holds OTP sharing settings.
type ShareConfig struct {
	DefaultExpiry     time.Duration `mapstructure:"default_expiry"`
	MaxExpiry         time.Duration `mapstructure:"max_expiry"`
	OTPLength         int           `mapstructure:"otp_length"`
	OTPTTL            time.Duration `mapstructure:"otp_ttl"`
	OTPResendInterval time.Duration `mapstructure:"otp_resend_interval"`
	OTPMaxAttempts    int           `mapstructure:"otp_max_attempts"`
	AccessTokenTTL    time.Duration `mapstructure:"access_token_ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	Name           string `mapstructure:"name"`
	SSLMode        string `mapstructure:"sslmode"`
	MaxOpen        int    `mapstructure:"max_open"`
	MaxIdle        int    `mapstructure:"max_idle"`
	ConnectRetries int    `mapstructure:"connect_retries"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "medvault")
	v.SetDefault("db.password", "medvault_secret")
	v.SetDefault("db.name", "medvault_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.connect_retries", 5)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "medvault")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "medvault-records")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "text")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 5)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.batch_size", 10)
	v.SetDefault("queue.stale_after_secs", 900)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@medvault.app")
	v.SetDefault("email.from_name", "MedVault")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// OCR defaults
	v.SetDefault("ocr.engine", "none")
	v.SetDefault("ocr.languages", "eng")
	v.SetDefault("ocr.dpi", 300)

	// Card parser defaults
	v.SetDefault("card_parser.mode", "single")
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("card_parser."+slot+".provider", "")
		v.SetDefault("card_parser."+slot+".api_key", "")
		v.SetDefault("card_parser."+slot+".default_model", "")
		v.SetDefault("card_parser."+slot+".max_retries", 2)
		v.SetDefault("card_parser."+slot+".timeout_secs", 60)
	}

	// Terminology defaults
	v.SetDefault("terminology.conditions_url", "https://clinicaltables.nlm.nih.gov/api/conditions/v3/search")
	v.SetDefault("terminology.medications_url", "https://rxnav.nlm.nih.gov/REST/approximateTerm.json")
	v.SetDefault("terminology.providers_url", "https://npiregistry.cms.hhs.gov/api/")
	v.SetDefault("terminology.timeout_secs", 5)
	v.SetDefault("terminology.max_retries", 2)
	v.SetDefault("terminology.min_query_length", 2)
	v.SetDefault("terminology.default_limit", 10)
	v.SetDefault("terminology.max_limit", 50)
	v.SetDefault("terminology.cache_size", 2048)
	v.SetDefault("terminology.cache_ttl", "10m")
	v.SetDefault("terminology.default_retry_after", "60s")

	// Share defaults
	v.SetDefault("share.default_expiry", "72h")
	v.SetDefault("share.max_expiry", "720h")
	v.SetDefault("share.otp_length", 6)
	v.SetDefault("share.otp_ttl", "10m")
	v.SetDefault("share.otp_resend_interval", "60s")
	v.SetDefault("share.otp_max_attempts", 5)
	v.SetDefault("share.access_token_ttl", "30m")
}

// EnvName returns the environment variable bound to a config key.
func EnvName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load reads configuration from environment variables with the MEDVAULT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Bind environment variables explicitly for nested keys
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key, EnvName(key)); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEDVAULT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvName("server.port")) == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:           v.GetString("db.host"),
		Port:           v.GetInt("db.port"),
		User:           v.GetString("db.user"),
		Password:       v.GetString("db.password"),
		Name:           v.GetString("db.name"),
		SSLMode:        v.GetString("db.sslmode"),
		MaxOpen:        v.GetInt("db.max_open"),
		MaxIdle:        v.GetInt("db.max_idle"),
		ConnectRetries: v.GetInt("db.connect_retries"),
	}
	cfg.JWT = JWTConfig{
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
		BatchSize:        v.GetInt("queue.batch_size"),
		StaleAfterSecs:   v.GetInt("queue.stale_after_secs"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		FrontendURL: v.GetString("email.frontend_url"),
	}
	cfg.OCR = OCRConfig{
		Engine:    v.GetString("ocr.engine"),
		Languages: splitList(v.GetString("ocr.languages")),
		DPI:       v.GetInt("ocr.dpi"),
	}
	cfg.CardParser = CardParserConfig{
		Mode:      v.GetString("card_parser.mode"),
		Primary:   providerConfig(v, "card_parser.primary"),
		Secondary: providerConfig(v, "card_parser.secondary"),
		Tertiary:  providerConfig(v, "card_parser.tertiary"),
	}
	cfg.Terminology = TerminologyConfig{
		ConditionsURL:     v.GetString("terminology.conditions_url"),
		MedicationsURL:    v.GetString("terminology.medications_url"),
		ProvidersURL:      v.GetString("terminology.providers_url"),
		TimeoutSecs:       v.GetInt("terminology.timeout_secs"),
		MaxRetries:        v.GetInt("terminology.max_retries"),
		MinQueryLength:    v.GetInt("terminology.min_query_length"),
		DefaultLimit:      v.GetInt("terminology.default_limit"),
		MaxLimit:          v.GetInt("terminology.max_limit"),
		CacheSize:         v.GetInt("terminology.cache_size"),
		CacheTTL:          v.GetDuration("terminology.cache_ttl"),
		DefaultRetryAfter: v.GetDuration("terminology.default_retry_after"),
	}
	cfg.Share = ShareConfig{
		DefaultExpiry:     v.GetDuration("share.default_expiry"),
		MaxExpiry:         v.GetDuration("share.max_expiry"),
		OTPLength:         v.GetInt("share.otp_length"),
		OTPTTL:            v.GetDuration("share.otp_ttl"),
		OTPResendInterval: v.GetDuration("share.otp_resend_interval"),
		OTPMaxAttempts:    v.GetInt("share.otp_max_attempts"),
		AccessTokenTTL:    v.GetDuration("share.access_token_ttl"),
	}

	if cfg.Share.OTPLength < 4 || cfg.Share.OTPLength > 10 {
		return nil, fmt.Errorf("share.otp_length must be between 4 and 10, got %d", cfg.Share.OTPLength)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) CardParserProviderConfig {
	return CardParserProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}

// splitList parses a comma-separated string into trimmed, non-empty entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
