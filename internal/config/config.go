package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	TrackTTL      time.Duration `mapstructure:"TRACK_TTL"`
	BodyLimit     int           `mapstructure:"BODY_LIMIT"`
}

// Load reads configuration from the environment. An empty RedisAddr, the
// default, runs without a track store. A zero TrackTTL keeps stored tracks
// forever.
func Load() Config {
	v := viper.New()
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TRACK_TTL", "0s")
	v.SetDefault("BODY_LIMIT", 32*1024*1024)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}
