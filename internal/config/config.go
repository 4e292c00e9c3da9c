package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	GRPC struct {
		Addr string
	}
	MySQL struct {
		DSN             string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxLifetime time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		PoolSize int
	}
	Log struct {
		Level  string
		Format string
	}
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.GRPC.Addr = getEnv("GRPC_ADDR", ":50051")

	cfg.MySQL.DSN = getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/stockledger?parseTime=true")
	cfg.MySQL.MaxOpenConns = parseInt(getEnv("MYSQL_MAX_OPEN_CONNS", "50"), 50)
	cfg.MySQL.MaxIdleConns = parseInt(getEnv("MYSQL_MAX_IDLE_CONNS", "25"), 25)
	cfg.MySQL.ConnMaxLifetime = 5 * time.Minute

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.PoolSize = parseInt(getEnv("REDIS_POOL_SIZE", "100"), 100)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
