/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"club-points-ledger/internal/models"

	"github.com/joho/godotenv"
)

var loadDotenv sync.Once

// Load reads configuration from the environment, after applying a .env file
// from the working directory if one exists.
func Load() (*models.Config, error) {
	loadDotenv.Do(func() {
		// godotenv returns an error when .env doesn't exist; that's fine.
		if err := godotenv.Load(); err != nil {
			log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		} else {
			log.Println("Loaded environment variables from .env file")
		}
	})

	var cfg models.Config
	durations := []struct {
		key      string
		target   *time.Duration
		fallback time.Duration
	}{
		{"SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout, 30 * time.Second},
		{"DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime, 5 * time.Minute},
		{"DB_CONN_MAX_IDLE_TIME", &cfg.Database.ConnMaxIdleTime, 30 * time.Second},
		{"DB_PING_TIMEOUT", &cfg.Database.PingTimeout, 5 * time.Second},
		{"DB_BUSY_TIMEOUT", &cfg.Database.BusyTimeout, 5 * time.Second},
		{"DB_TX_RETRY_BACKOFF", &cfg.Database.TxRetryBackoff, 10 * time.Millisecond},
		{"RELAY_POLLING_INTERVAL", &cfg.Relay.PollingInterval, 5 * time.Second},
		{"TIER_RESYNC_INTERVAL", &cfg.Scheduler.TierResyncInterval, 0},
	}
	for _, d := range durations {
		value, err := getEnvDuration(d.key, d.fallback)
		if err != nil {
			return nil, err
		}
		*d.target = value
	}

	cfg.Server.Port = getEnvInt("SERVER_PORT", 8080)
	cfg.Server.JWTSecret = os.Getenv("JWT_SECRET")

	cfg.Database.Driver = getEnvString("DB_DRIVER", "sqlite3")
	cfg.Database.Path = getEnvString("DATABASE_PATH", "club.db")
	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	cfg.Database.TxMaxAttempts = getEnvInt("DB_TX_MAX_ATTEMPTS", 5)

	cfg.Relay.Enabled = getEnvBool("RELAY_ENABLED", false)
	cfg.Relay.BatchSize = getEnvInt("RELAY_BATCH_SIZE", 100)

	cfg.MQ = models.MQConfig{
		Backend: getEnvString("MQ_BACKEND", "none"),
		Channel: getEnvString("MQ_CHANNEL", "point-events"),
		RabbitMQ: models.RabbitMQConfig{
			URL:             os.Getenv("RABBITMQ_URL"),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 10),
		},
		PubSub: models.PubSubConfig{
			ProjectID:          os.Getenv("PUBSUB_PROJECT_ID"),
			CredentialsFile:    os.Getenv("PUBSUB_CREDENTIALS_FILE"),
			SubscriptionSuffix: getEnvString("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}

	cfg.Formance = models.FormanceConfig{
		Enabled:      getEnvBool("FORMANCE_ENABLED", false),
		StackURL:     os.Getenv("FORMANCE_STACK_URL"),
		ClientID:     os.Getenv("FORMANCE_CLIENT_ID"),
		ClientSecret: os.Getenv("FORMANCE_CLIENT_SECRET"),
		LedgerName:   getEnvString("FORMANCE_LEDGER_NAME", "club-points"),
	}

	cfg.ObjectStore = models.ObjectStoreConfig{
		Backend:       getEnvString("OBJECT_STORE_BACKEND", "none"),
		PublicBaseURL: os.Getenv("OBJECT_PUBLIC_BASE_URL"),
		Minio: models.MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: models.GCSConfig{
			Bucket:          os.Getenv("GCS_BUCKET"),
			ProjectID:       os.Getenv("GCS_PROJECT_ID"),
			CredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		},
		S3: models.S3Config{
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          getEnvString("S3_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Bucket:          os.Getenv("S3_BUCKET"),
			UsePathStyle:    getEnvBool("S3_USE_PATH_STYLE", false),
		},
	}

	return &cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
