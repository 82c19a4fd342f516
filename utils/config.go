// utils/config.go
package utils

import (
	"log"
	"os"
	"strconv"
	"time"
)

// EnvStr returns the env var value or fallback when unset/empty.
func EnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the env var value or exits — used for hard startup requirements.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("❌ %s environment variable not set", key)
	}
	return v
}

func EnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func EnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a number, using default %g", key, v, fallback)
		return fallback
	}
	return f
}

func EnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a duration, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
