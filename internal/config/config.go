package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	NATS     NATSConfig     `mapstructure:"nats"`
	App      AppConfig      `mapstructure:"app"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// Addr returns the host:port address.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	ExpiryDays int    `mapstructure:"expiry_days"`
}

type EmailConfig struct {
	Provider       string `mapstructure:"provider"` // smtp or sendgrid
	SMTPHost       string `mapstructure:"smtp_host"`
	SMTPPort       int    `mapstructure:"smtp_port"`
	SMTPUsername   string `mapstructure:"smtp_username"`
	SMTPPassword   string `mapstructure:"smtp_password"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	From           string `mapstructure:"from"`
	FromName       string `mapstructure:"from_name"`
	AdminEmail     string `mapstructure:"admin_email"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type AppConfig struct {
	FrontendURL   string `mapstructure:"frontend_url"`
	UploadDir     string `mapstructure:"upload_dir"`
	StaticDir     string `mapstructure:"static_dir"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

// LoadConfig builds the configuration from defaults and environment
// variable overrides.
func LoadConfig() *Config {
	config := &Config{}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.mode", "debug")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "dev")
	viper.SetDefault("database.password", "devpass")
	viper.SetDefault("database.name", "trendora")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", true)

	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiry_days", 30)

	viper.SetDefault("email.provider", "smtp")
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.from", "noreply@trendora.dev")
	viper.SetDefault("email.from_name", "Trendora")

	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.enabled", false)

	viper.SetDefault("app.frontend_url", "http://localhost:3000")
	viper.SetDefault("app.upload_dir", "./uploads")
	viper.SetDefault("app.static_dir", "./public")
	viper.SetDefault("app.secure_cookies", false)

	viper.AutomaticEnv()

	if port := os.Getenv("PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		viper.Set("server.mode", mode)
	}

	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		viper.Set("database.host", dbHost)
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		viper.Set("database.port", dbPort)
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		viper.Set("database.user", dbUser)
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		viper.Set("database.password", dbPassword)
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		viper.Set("database.name", dbName)
	}
	if dbSSLMode := os.Getenv("DB_SSLMODE"); dbSSLMode != "" {
		viper.Set("database.sslmode", dbSSLMode)
	}

	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		viper.Set("redis.host", redisHost)
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		viper.Set("redis.port", redisPort)
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		viper.Set("redis.password", redisPassword)
	}
	if redisEnabled := os.Getenv("REDIS_ENABLED"); redisEnabled != "" {
		viper.Set("redis.enabled", redisEnabled == "true")
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		viper.Set("jwt.secret", jwtSecret)
	}

	if provider := os.Getenv("EMAIL_PROVIDER"); provider != "" {
		viper.Set("email.provider", provider)
	}
	if smtpHost := os.Getenv("SMTP_HOST"); smtpHost != "" {
		viper.Set("email.smtp_host", smtpHost)
	}
	if smtpPort := os.Getenv("SMTP_PORT"); smtpPort != "" {
		viper.Set("email.smtp_port", smtpPort)
	}
	if smtpUser := os.Getenv("SMTP_USERNAME"); smtpUser != "" {
		viper.Set("email.smtp_username", smtpUser)
	}
	if smtpPassword := os.Getenv("SMTP_PASSWORD"); smtpPassword != "" {
		viper.Set("email.smtp_password", smtpPassword)
	}
	if sendgridKey := os.Getenv("SENDGRID_API_KEY"); sendgridKey != "" {
		viper.Set("email.sendgrid_api_key", sendgridKey)
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		viper.Set("email.from", from)
	}
	if adminEmail := os.Getenv("ADMIN_EMAIL"); adminEmail != "" {
		viper.Set("email.admin_email", adminEmail)
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		viper.Set("nats.url", natsURL)
		viper.Set("nats.enabled", true)
	}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		viper.Set("app.frontend_url", frontendURL)
	}
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		viper.Set("app.upload_dir", uploadDir)
	}
	if staticDir := os.Getenv("STATIC_DIR"); staticDir != "" {
		viper.Set("app.static_dir", staticDir)
	}
	if secure := os.Getenv("SECURE_COOKIES"); secure != "" {
		viper.Set("app.secure_cookies", secure == "true")
	}

	if err := viper.Unmarshal(config); err != nil {
		panic(fmt.Sprintf("failed to unmarshal config: %v", err))
	}
	return config
}
