package environments

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	WhatsApp WhatsAppConfig
	Storage  StorageConfig
	Mirror   MirrorConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type WhatsAppConfig struct {
	BaseURL       string
	APIVersion    string
	Token         string
	PhoneNumberID string
	VerifyToken   string
	// AppSecret enables X-Hub-Signature-256 checks on inbound webhooks when set.
	AppSecret       string
	SendTimeout     time.Duration
	DefaultTemplate string
	DefaultLanguage string
	StatusTemplates map[string]string
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	UseSSL        bool
	PublicBaseURL string
	PublicRead    bool
}

type MirrorConfig struct {
	Capacity int
}

type AuthConfig struct {
	AdminAPIKey string
	// AllowUnauthenticated opens /api/v1 when AdminAPIKey is empty.
	AllowUnauthenticated bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           GetEnv("SERVER_PORT", "8080"),
			AllowedOrigins: GetEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			LogLevel:       GetEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:     GetEnv("DB_HOST", "localhost"),
			Port:     GetEnv("DB_PORT", "3306"),
			User:     GetEnv("DB_USER", "relay"),
			Password: GetEnv("DB_PASSWORD", "relay123"),
			DBName:   GetEnv("DB_NAME", "whatsapp_relay"),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", "localhost"),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:         GetEnv("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      GetEnv("WHATSAPP_API_VERSION", "v19.0"),
			Token:           GetEnv("WHATSAPP_TOKEN", ""),
			PhoneNumberID:   GetEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			VerifyToken:     GetEnv("WHATSAPP_VERIFY_TOKEN", ""),
			AppSecret:       GetEnv("WHATSAPP_APP_SECRET", ""),
			SendTimeout:     GetEnvAsDuration("WHATSAPP_SEND_TIMEOUT", 10*time.Second),
			DefaultTemplate: GetEnv("WHATSAPP_DEFAULT_TEMPLATE", "hello_world"),
			DefaultLanguage: GetEnv("WHATSAPP_DEFAULT_LANGUAGE", "en_US"),
			StatusTemplates: map[string]string{
				"approved": GetEnv("WHATSAPP_TEMPLATE_APPROVED", "verification_approved"),
				"rejected": GetEnv("WHATSAPP_TEMPLATE_REJECTED", "verification_rejected"),
				"pending":  GetEnv("WHATSAPP_TEMPLATE_PENDING", "verification_pending"),
			},
		},
		Storage: StorageConfig{
			Endpoint:      GetEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKey:     GetEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:     GetEnv("STORAGE_SECRET_KEY", ""),
			Bucket:        GetEnv("STORAGE_BUCKET", "registration-images"),
			Region:        GetEnv("STORAGE_REGION", ""),
			UseSSL:        GetEnvAsBool("STORAGE_USE_SSL", false),
			PublicBaseURL: GetEnv("STORAGE_PUBLIC_BASE_URL", ""),
			PublicRead:    GetEnvAsBool("STORAGE_PUBLIC_READ", true),
		},
		Mirror: MirrorConfig{
			Capacity: GetEnvAsInt("MIRROR_CAPACITY", 100),
		},
		Auth: AuthConfig{
			AdminAPIKey:          GetEnv("ADMIN_API_KEY", ""),
			AllowUnauthenticated: GetEnvAsBool("ALLOW_UNAUTHENTICATED_ADMIN", false),
		},
	}
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvAsSlice splits a comma separated value, dropping empty items.
func GetEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		return defaultValue
	}

	return items
}
