package cache

import (
	"context"
	"fmt"
	"log"

	"contest_tracker/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// RDB is nil when Redis is unreachable; callers treat that as cache-off.
var RDB *redis.Client

func ConnectRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("WARN: Redis unavailable, contest list caching disabled: %v", err)
		return
	}
	RDB = client
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}
