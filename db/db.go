// Package db persists the runtime's event stream to Postgres and fronts
// hot reads with a Redis cache. Neither store is authoritative: the
// in-memory runtime.StorageMap trees in did/offchainsig/trustregistry are
// the source of truth for the current session, exactly as the outer
// chain's trie would be. This package exists for the same reason the
// teacher project keeps one: durable history and fast repeated reads.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

var (
	DB    *sql.DB
	Redis *redis.Client

	initMu      sync.Mutex
	initialized bool
)

// InitDB opens the Postgres and Redis connections and ensures the audit
// log schema exists. Safe to call more than once; subsequent calls are a
// no-op while a connection is already live.
func InitDB() error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized && DB != nil {
		return nil
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "did_registry")
	sslmode := getEnv("DB_SSLMODE", "disable")
	maxConn := getEnvAsInt("DB_MAX_CONNECTIONS", 20)
	maxIdleConn := getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5)
	connLifetime := getEnvAsInt("DB_CONNECTION_LIFETIME", 300)

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=did-trust-registry connect_timeout=10",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(maxConn)
	DB.SetMaxIdleConns(maxIdleConn)
	DB.SetConnMaxLifetime(time.Duration(connLifetime) * time.Second)

	if err = DB.Ping(); err != nil {
		DB = nil
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	fmt.Printf("Successfully connected to database %s at %s:%s\n", dbname, host, port)

	if err = createTables(); err != nil {
		DB = nil
		return fmt.Errorf("failed to create tables: %w", err)
	}

	redisAddr := fmt.Sprintf("%s:%s", getEnv("REDIS_HOST", "localhost"), getEnv("REDIS_PORT", "6379"))
	Redis = redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   getEnvAsInt("REDIS_DB", 0),
	})
	if err := Redis.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	fmt.Printf("Successfully connected to Redis at %s\n", redisAddr)

	initialized = true
	return nil
}

// createTables creates the append-only audit log and the denormalized
// projection tables did_documents, trust_registries and
// trust_registry_schemas. No code in this repository writes or reads the
// projection tables; the API's read endpoints serve from the in-memory
// runtime.StorageMap stores.
func createTables() error {
	tableQueries := map[string]string{
		"audit_log": `
			CREATE TABLE IF NOT EXISTS audit_log (
				id SERIAL PRIMARY KEY,
				event_id UUID NOT NULL UNIQUE,
				topic BYTEA NOT NULL,
				action_kind VARCHAR(100) NOT NULL,
				actor_did TEXT,
				payload JSONB,
				recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
		"did_documents": `
			CREATE TABLE IF NOT EXISTS did_documents (
				did TEXT PRIMARY KEY,
				controllers JSONB NOT NULL,
				self_controlled BOOLEAN NOT NULL DEFAULT TRUE,
				doc_ref TEXT,
				nonce BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
		"trust_registries": `
			CREATE TABLE IF NOT EXISTS trust_registries (
				reg_id TEXT PRIMARY KEY,
				convener TEXT NOT NULL,
				name VARCHAR(256) NOT NULL,
				gov_framework BYTEA,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
		"trust_registry_schemas": `
			CREATE TABLE IF NOT EXISTS trust_registry_schemas (
				reg_id TEXT NOT NULL REFERENCES trust_registries(reg_id),
				schema_id TEXT NOT NULL,
				metadata JSONB NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (reg_id, schema_id)
			);
		`,
	}

	tableOrder := []string{
		"audit_log",
		"did_documents",
		"trust_registries",
		"trust_registry_schemas",
	}

	for _, name := range tableOrder {
		if _, err := DB.Exec(tableQueries[name]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	fmt.Printf("Warning: environment variable %s is not a valid integer, using default %d\n", key, defaultValue)
	return defaultValue
}

// Close tears down both connections. Safe to call even if InitDB was
// never called or already failed.
func Close() {
	initMu.Lock()
	defer initMu.Unlock()

	if DB != nil {
		if err := DB.Close(); err != nil {
			fmt.Printf("Error closing database connection: %v\n", err)
		}
		DB = nil
		initialized = false
	}

	if Redis != nil {
		if err := Redis.Close(); err != nil {
			fmt.Printf("Error closing Redis connection: %v\n", err)
		}
		Redis = nil
	}
}
