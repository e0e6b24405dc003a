package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "dev"
	EnvProduction  = "production"
)

type Config struct {
	Env        string
	ServerPort int
	LogLevel   string
	// Timezone is used to interpret calendar dates such as cleanup cut-offs
	// and export file names.
	Timezone          string
	AllowRegistration bool
	Database          DatabaseConfig
	Session           SessionConfig
	Tracing           TracingConfig
	MQ                MQConfig
	Storage           StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	CookiePath string
}

type TracingConfig struct {
	// CollectorHost is the OTLP/HTTP collector host. Tracing is disabled when empty.
	CollectorHost string
	ServiceName   string
}

type MQConfig struct {
	// Backend is one of rabbitmq, pubsub, kafka or none.
	Backend  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
	Kafka    KafkaConfig
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
}

type StorageConfig struct {
	// Backend is one of minio, gcs, s3 or none.
	Backend string
	Minio   MinioConfig
	GCS     GCSConfig
	S3      S3Config
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == EnvDevelopment {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "backoffice"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "backoffice_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	sessionConfig := SessionConfig{
		Secret:     strings.TrimSpace(getEnv("JWT_ACCESS_KEY", "")),
		TTL:        getEnvDuration("SESSION_TTL", 365*24*time.Hour),
		CookieName: getEnv("SESSION_COOKIE_NAME", "authToken"),
		CookiePath: getEnv("SESSION_COOKIE_PATH", "/"),
	}

	mqConfig := MQConfig{
		Backend: strings.ToLower(getEnv("MQ_BACKEND", "none")),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 10),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", nil),
			GroupID: getEnv("KAFKA_GROUP_ID", "backoffice"),
		},
	}

	storageConfig := StorageConfig{
		Backend: strings.ToLower(getEnv("STORAGE_BACKEND", "none")),
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "backoffice"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			Region:    getEnv("S3_REGION", "auto"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
		},
	}

	return Config{
		Env:               getEnv("ENV", EnvDevelopment),
		ServerPort:        getEnvInt("SERVER_PORT", 8080),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		Timezone:          getEnv("TIMEZONE", "Asia/Jakarta"),
		AllowRegistration: getEnvBool("ALLOW_REGISTRATION", false),
		Database:          dbConfig,
		Session:           sessionConfig,
		Tracing: TracingConfig{
			CollectorHost: getEnv("OTEL_COLLECTOR_HOST", ""),
			ServiceName:   getEnv("OTEL_SERVICE_NAME", "backoffice"),
		},
		MQ:      mqConfig,
		Storage: storageConfig,
	}
}

// IsProduction reports whether secure cookies should be issued.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location resolves the configured timezone, falling back to WIB (UTC+7)
// when the zone database has no entry for it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil || value <= 0 {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
