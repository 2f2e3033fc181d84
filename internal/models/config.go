package models

import "time"

// Config represents the application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Relay       RelayConfig
	MQ          MQConfig
	Formance    FormanceConfig
	ObjectStore ObjectStoreConfig
	Scheduler   SchedulerConfig
}

// ServerConfig holds HTTP transport settings
type ServerConfig struct {
	Port           int
	JWTSecret      string
	RequestTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // "sqlite3" or "postgres"
	Path            string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	BusyTimeout     time.Duration
	TxMaxAttempts   int
	TxRetryBackoff  time.Duration
}

// RelayConfig holds outbox relay settings
type RelayConfig struct {
	Enabled         bool
	PollingInterval time.Duration
	BatchSize       int
}

// MQConfig selects and configures the message broker sink
type MQConfig struct {
	Backend  string // "none", "rabbitmq" or "pubsub"
	Channel  string
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
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

// FormanceConfig holds Formance Stack connection settings for the ledger mirror
type FormanceConfig struct {
	Enabled      bool
	StackURL     string
	ClientID     string
	ClientSecret string
	LedgerName   string
}

// ObjectStoreConfig selects the bucket that holds post images
type ObjectStoreConfig struct {
	Backend       string // "none", "minio", "gcs" or "s3"
	PublicBaseURL string
	Minio         MinioConfig
	GCS           GCSConfig
	S3            S3Config
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
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// SchedulerConfig holds background job settings
type SchedulerConfig struct {
	TierResyncInterval time.Duration
}
