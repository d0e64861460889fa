// Package config reads the process's small environment-driven
// configuration: a direct os.Getenv read with a default.
package config

import (
	"os"

	"matchbook/internal/projector"
)

const defaultRedisURL = "redis://127.0.0.1:6379/0"

// Config is the process entrypoint's configuration.
type Config struct {
	RedisURL string
	Depth    int
}

// FromEnv reads REDIS_URL, defaulting to a localhost broker.
func FromEnv() Config {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = defaultRedisURL
	}
	return Config{RedisURL: url, Depth: projector.DefaultDepth}
}
