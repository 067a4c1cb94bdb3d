package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Sections struct {
		RemovalGrace time.Duration `mapstructure:"removal_grace"`
	} `mapstructure:"sections"`
	Cache struct {
		PublicProfileTTL time.Duration `mapstructure:"public_profile_ttl"`
	} `mapstructure:"cache"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

// LoadConfig reads config.yaml plus environment overrides. An optional path
// points at the directory holding config.yaml and .env (tests pass "../..").
func LoadConfig(paths ...string) (cfg Config, err error) {
	dir := "."
	if len(paths) > 0 {
		dir = paths[0]
	}

	if err := godotenv.Load(dir + "/.env"); err != nil {
		log.Println("warning: .env file not found, use environment only.")
	}

	viper.AddConfigPath(dir)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err = viper.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read environment only. Error: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("db.dsn", "DB_DSN")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	viper.BindEnv("sections.removal_grace", "SECTION_REMOVAL_GRACE")
	viper.BindEnv("cache.public_profile_ttl", "PUBLIC_PROFILE_CACHE_TTL")
	viper.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("sections.removal_grace", 5*time.Second)
	viper.SetDefault("cache.public_profile_ttl", 5*time.Minute)

	err = viper.Unmarshal(&cfg)
	return
}
