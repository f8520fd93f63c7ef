package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	Server serverConfig `yaml:"server"`
	Redis  redisConfig  `yaml:"redis"`
	Milvus milvusConfig `yaml:"milvus"`
	Seed   seedConfig   `yaml:"seed"`
}

type serverConfig struct {
	Addr string `yaml:"addr"`
}

type redisConfig struct {
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	KeyPrefix    string `yaml:"key_prefix"`
	DialTimeout  string `yaml:"dial_timeout"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	CacheTTL     string `yaml:"cache_ttl"`
}

type milvusConfig struct {
	Addr string `yaml:"addr"`
}

type seedConfig struct {
	Path string `yaml:"path"`
}

func defaultConfig() config {
	return config{
		Server: serverConfig{Addr: ":8890"},
		Redis: redisConfig{
			Addr:         "",
			Password:     "",
			DB:           0,
			KeyPrefix:    "accesskit:",
			DialTimeout:  "1s",
			ReadTimeout:  "1s",
			WriteTimeout: "1s",
			CacheTTL:     "10m",
		},
		Milvus: milvusConfig{Addr: ""},
		Seed:   seedConfig{Path: ""},
	}
}

func loadConfig(path string) (config, bool, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return config{}, false, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return config{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultConfig().Server.Addr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = defaultConfig().Redis.KeyPrefix
	}
	if cfg.Redis.DialTimeout == "" {
		cfg.Redis.DialTimeout = defaultConfig().Redis.DialTimeout
	}
	if cfg.Redis.ReadTimeout == "" {
		cfg.Redis.ReadTimeout = defaultConfig().Redis.ReadTimeout
	}
	if cfg.Redis.WriteTimeout == "" {
		cfg.Redis.WriteTimeout = defaultConfig().Redis.WriteTimeout
	}
	if cfg.Redis.CacheTTL == "" {
		cfg.Redis.CacheTTL = defaultConfig().Redis.CacheTTL
	}
	return cfg, true, nil
}

// applyEnv overlays environment variables on the loaded config. In local
// setups these usually arrive via a .env file.
func applyEnv(cfg *config) {
	if v := os.Getenv("ACCESSKIT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ACCESSKIT_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("ACCESSKIT_MILVUS_ADDR"); v != "" {
		cfg.Milvus.Addr = v
	}
	if v := os.Getenv("ACCESSKIT_SEED"); v != "" {
		cfg.Seed.Path = v
	}
}

func (c config) redisTimeouts() (dial time.Duration, read time.Duration, write time.Duration, err error) {
	dial, err = time.ParseDuration(c.Redis.DialTimeout)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("redis.dial_timeout invalid duration: %w", err)
	}
	read, err = time.ParseDuration(c.Redis.ReadTimeout)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("redis.read_timeout invalid duration: %w", err)
	}
	write, err = time.ParseDuration(c.Redis.WriteTimeout)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("redis.write_timeout invalid duration: %w", err)
	}
	return dial, read, write, nil
}

func (c config) cacheTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Redis.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("redis.cache_ttl invalid duration: %w", err)
	}
	return ttl, nil
}
