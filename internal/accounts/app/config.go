package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/spacehub/pkg/cryptox"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
)

type Config struct {
	HTTPAddr            string        // Listen address (default: :8080)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	LogFile             string        // Optional: mirror logs into a rotated file
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)

	DatabaseFile string // SQLite database file (default: ./accounts.db)
	PepperFile   string // File holding the password pepper (default: ./pepper)

	Issuer         string        // Issuer claim for session tokens (default: spacehub-accounts)
	SigningAlg     string        // EdDSA or HS256 (default: EdDSA)
	SigningKeyFile string        // EdDSA key, created when missing (default: ./signing.pem)
	KeyID          string        // kid header (default: accounts-1)
	JWTSecret      string        // HS256 shared secret, at least 32 bytes
	SessionTTL     time.Duration // Session lifetime (default: 24h)

	OTPTTL            time.Duration // One-time code lifetime (default: 10m)
	OTPDigits         int           // One-time code width, 4..8 (default: 6)
	InviteTTL         time.Duration // Invitation lifetime (default: 72h)
	PasswordMinLength int           // Minimum password length (default: 8)
	PasswordHashAlg   string        // argon2id or bcrypt (default: argon2id)
	BcryptCost        int           // bcrypt work factor (default: 12)
	OptimisticLocking bool          // Guard code and password writes with the record version
	ResetRequireOTP   bool          // Require a reset code in reset-password
	PublicBaseURL     string        // Origin used in emailed links (default: http://localhost:8080)

	MailDriver   string // log, smtp or amqp (default: log)
	MailFrom     string // Sender address for smtp (default: no-reply@spacehub.local)
	SMTPAddr     string
	SMTPUsername string
	SMTPPassword string
	AMQPURL      string
	AMQPQueue    string // (default: accounts.mail)

	StripeSecretKey string // Optional: enables card registration

	RateLimitRedisAddr string // Optional: share limiter counters through Redis
	RateLimitStrict    httpx.RateLimitConfig
	RateLimitModerate  httpx.RateLimitConfig
	RateLimitLenient   httpx.RateLimitConfig

	HousekeepingInterval time.Duration // (default: 10m)

	AdminEmail    string // Optional: seed this admin on first start
	AdminPassword string
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory, if present, is loaded first and never overrides
// variables that are already set.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:            getEnvOrDefault("HTTP_ADDR", ":8080"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		LogFile:             os.Getenv("LOG_FILE"),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		DatabaseFile: getEnvOrDefault("ACCOUNTS_DATABASE_FILE", "accounts.db"),
		PepperFile:   getEnvOrDefault("ACCOUNTS_PEPPER_FILE", "pepper"),

		Issuer:         getEnvOrDefault("ACCOUNTS_ISSUER", "spacehub-accounts"),
		SigningAlg:     getEnvOrDefault("ACCOUNTS_SIGNING_ALG", "EdDSA"),
		SigningKeyFile: getEnvOrDefault("ACCOUNTS_SIGNING_KEY_FILE", "signing.pem"),
		KeyID:          getEnvOrDefault("ACCOUNTS_KEY_ID", "accounts-1"),
		JWTSecret:      os.Getenv("ACCOUNTS_JWT_SECRET"),
		SessionTTL:     getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),

		OTPTTL:            getEnvDurationOrDefault("OTP_TTL", 10*time.Minute),
		OTPDigits:         getEnvIntOrDefault("OTP_DIGITS", 6),
		InviteTTL:         getEnvDurationOrDefault("INVITE_TTL", 72*time.Hour),
		PasswordMinLength: getEnvIntOrDefault("PASSWORD_MIN_LENGTH", 8),
		PasswordHashAlg:   getEnvOrDefault("PASSWORD_HASH_ALG", cryptox.AlgArgon2id),
		BcryptCost:        getEnvIntOrDefault("BCRYPT_COST", 12),
		OptimisticLocking: getEnvBoolOrDefault("OPTIMISTIC_LOCKING", false),
		ResetRequireOTP:   getEnvBoolOrDefault("RESET_REQUIRE_OTP", false),
		PublicBaseURL:     getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"),

		MailDriver:   strings.ToLower(getEnvOrDefault("MAIL_DRIVER", "log")),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "no-reply@spacehub.local"),
		SMTPAddr:     os.Getenv("SMTP_ADDR"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPQueue:    getEnvOrDefault("AMQP_QUEUE", "accounts.mail"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		RateLimitRedisAddr: os.Getenv("RATELIMIT_REDIS_ADDR"),
		RateLimitStrict:    httpx.ParseRateLimitFromEnv("STRICT", httpx.StrictLimit),
		RateLimitModerate:  httpx.ParseRateLimitFromEnv("MODERATE", httpx.ModerateLimit),
		RateLimitLenient:   httpx.ParseRateLimitFromEnv("LENIENT", httpx.LenientLimit),

		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.SigningAlg {
	case "EdDSA":
	case "HS256":
		if len(c.JWTSecret) < 32 {
			errs = append(errs, errors.New("ACCOUNTS_JWT_SECRET must be at least 32 bytes for HS256"))
		}
	default:
		errs = append(errs, fmt.Errorf("ACCOUNTS_SIGNING_ALG %q is not supported (EdDSA, HS256)", c.SigningAlg))
	}

	if c.OTPDigits < 4 || c.OTPDigits > 8 {
		errs = append(errs, fmt.Errorf("OTP_DIGITS must be between 4 and 8, got %d", c.OTPDigits))
	}
	if c.PasswordMinLength < 1 {
		errs = append(errs, errors.New("PASSWORD_MIN_LENGTH must be positive"))
	}

	switch c.PasswordHashAlg {
	case cryptox.AlgArgon2id:
	case cryptox.AlgBcrypt:
		if c.BcryptCost < cryptox.MinBcryptCost {
			errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d", cryptox.MinBcryptCost))
		}
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASH_ALG %q is not supported", c.PasswordHashAlg))
	}

	switch c.MailDriver {
	case "log":
	case "smtp":
		if c.SMTPAddr == "" {
			errs = append(errs, errors.New("SMTP_ADDR is required with MAIL_DRIVER=smtp"))
		}
	case "amqp":
		if c.AMQPURL == "" {
			errs = append(errs, errors.New("AMQP_URL is required with MAIL_DRIVER=amqp"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_DRIVER %q is not supported (log, smtp, amqp)", c.MailDriver))
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
