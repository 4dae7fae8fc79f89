package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	MongoURI   string
	MongoDB    string
	RedisURL   string
	JWTSecret  string
}

func LoadConfig() (*Config, error) {
	// .env is optional in container deployments, env vars win either way
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr: os.Getenv("SERVER_ADDR"),
		MongoURI:   os.Getenv("MONGO_URI"),
		MongoDB:    os.Getenv("MONGO_DB"),
		RedisURL:   os.Getenv("REDIS_URL"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
	}

	if cfg.ServerAddr == "" {
		cfg.ServerAddr = ":8010"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "solar_connect"
	}

	return cfg, nil
}
