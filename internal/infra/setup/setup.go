// Package setup initializes the process-level infrastructure: the MySQL
// connection pool, schema migration, and the Redis client.
package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/huzaifaabbasi630/sharehub-backend/internal/domain"
)

// InitDB opens the MySQL connection pool. A failure here is not fatal to
// the caller: the core runs registry-only when the durable store is down.
func InitDB(user, password, host, port, name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, name)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("setup: open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("setup: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// MigrateDB auto-migrates the durable schema.
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Room{},
		&domain.Participant{},
		&domain.Message{},
		&domain.ReadReceipt{},
		&domain.JoinRequest{},
		&domain.CallLog{},
		&domain.CallParticipant{},
	)
	if err != nil {
		return fmt.Errorf("setup: migrate: %w", err)
	}
	return nil
}

// InitRedis connects the Redis client used by the rate limiter and the
// asynq broker, verifying the connection with a ping.
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxConnAge:   30 * time.Minute,
	})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("setup: redis ping: %w", err)
	}
	return client, nil
}
