package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Debug            bool   `envconfig:"debug"`
	Port             int    `envconfig:"port" default:"8080"`
	Env              string `envconfig:"env"`
	Host             string `envconfig:"host"`
	PostgresHost     string `envconfig:"postgres_host"`
	PostgresUser     string `envconfig:"postgres_user"`
	PostgresDB       string `envconfig:"postgres_db"`
	PostgresPort     int    `envconfig:"postgres_port"`
	PostgresPassword string `envconfig:"postgres_password"`
	JWTSecret        string `envconfig:"jwt_secret"`
	RedisAddr        string `envconfig:"redis_addr"`

	// Ascending level cut points for the points ledger. A balance below
	// LevelSilver is Bronze; at or above LevelDiamond is Diamond.
	LevelSilver   int `envconfig:"level_silver" default:"100"`
	LevelGold     int `envconfig:"level_gold" default:"500"`
	LevelPlatinum int `envconfig:"level_platinum" default:"1500"`
	LevelDiamond  int `envconfig:"level_diamond" default:"5000"`

	AccessControlAllowOrigin string `envconfig:"access_control_allow_origin"`
}

func Load() (*Config, error) {
	env := os.Getenv("GIN_MODE")
	if env != "release" {
		if err := godotenv.Load("./.env"); err != nil {
			log.Printf("couldn't load env vars: %v", err)
		}
	}

	c := &Config{}
	err := envconfig.Process("scamwatch", c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LevelThresholds returns the configured cut points in ascending order.
func (c *Config) LevelThresholds() [4]int {
	return [4]int{c.LevelSilver, c.LevelGold, c.LevelPlatinum, c.LevelDiamond}
}
