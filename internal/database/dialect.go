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

package database

import (
	"errors"
	"fmt"
	"strings"

	"club-points-ledger/internal/models"
	"club-points-ledger/internal/store"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// PostgreSQL SQLSTATE codes that mean "run the transaction again".
const (
	pqSerializationFailure pq.ErrorCode = "40001"
	pqDeadlockDetected     pq.ErrorCode = "40P01"
	pqUniqueViolation      pq.ErrorCode = "23505"
)

// racedConstraints are the unique keys two concurrent writers of the same point
// event can both pass the existence check for. A retry then sees the winner's row.
var racedConstraints = map[string]bool{
	"point_events_pkey":                true,
	"point_event_outbox_event_key_key": true,
}

// dialect holds the driver-specific bits; the SQL text itself is shared.
type dialect struct {
	driver        string
	migrationsDir string
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite":
		return dialect{driver: DriverSQLite, migrationsDir: "migrations/sqlite"}, nil
	case DriverPostgres, "postgresql", "pq":
		return dialect{driver: DriverPostgres, migrationsDir: "migrations/postgres"}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// dsn builds the connection string for cfg.
func (d dialect) dsn(cfg models.DatabaseConfig) (string, error) {
	switch d.driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return "", fmt.Errorf("database path cannot be empty")
		}
		// Writers take the lock at BEGIN so read-modify-write bodies serialize
		// instead of failing on lock upgrade.
		return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=1&_txlock=immediate&_busy_timeout=%d",
			cfg.Path, cfg.BusyTimeout.Milliseconds()), nil
	case DriverPostgres:
		if cfg.URL == "" {
			return "", fmt.Errorf("database url cannot be empty for postgres")
		}
		return cfg.URL, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", d.driver)
}

// isTransient reports whether err is a contention failure that a fresh
// attempt of the same transaction body can resolve.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, store.ErrConcurrentModification) {
		return true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected:
			return true
		case pqUniqueViolation:
			return racedConstraints[pqErr.Constraint]
		}
	}
	return false
}
