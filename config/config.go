package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	ServiceName string

	MongoURI string
	MongoDB  string

	FirebaseDatabaseURL string
	FirebaseCredentials string

	ConsulAddr string

	JWTSecret  string
	SessionTTL time.Duration

	NominatimBaseURL string
	GeocodeTimeout   time.Duration
	GeocodeCacheSize int

	StorePollInterval time.Duration

	LogLevel    string
	LogFile     string
	LogMaxSizeM int
	LogMaxAge   int
}

func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVICE_NAME", "location-service")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "familytracker")
	v.SetDefault("FIREBASE_DATABASE_URL", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("CONSUL_ADDR", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_TIMEOUT", "10s")
	v.SetDefault("GEOCODE_CACHE_SIZE", 100)
	v.SetDefault("STORE_POLL_INTERVAL", "2s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)

	return &Config{
		Port:                v.GetString("PORT"),
		ServiceName:         v.GetString("SERVICE_NAME"),
		MongoURI:            v.GetString("MONGO_URI"),
		MongoDB:             v.GetString("MONGO_DB"),
		FirebaseDatabaseURL: v.GetString("FIREBASE_DATABASE_URL"),
		FirebaseCredentials: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		ConsulAddr:          v.GetString("CONSUL_ADDR"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		SessionTTL:          v.GetDuration("SESSION_TTL"),
		NominatimBaseURL:    v.GetString("NOMINATIM_BASE_URL"),
		GeocodeTimeout:      v.GetDuration("GEOCODE_TIMEOUT"),
		GeocodeCacheSize:    v.GetInt("GEOCODE_CACHE_SIZE"),
		StorePollInterval:   v.GetDuration("STORE_POLL_INTERVAL"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFile:             v.GetString("LOG_FILE"),
		LogMaxSizeM:         v.GetInt("LOG_MAX_SIZE_MB"),
		LogMaxAge:           v.GetInt("LOG_MAX_AGE_DAYS"),
	}
}
