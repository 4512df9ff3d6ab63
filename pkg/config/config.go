package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	StorageBucket           string
	PostgresUrl             string
	MongoURI                string
	JWTSecret               string
	// Escalation thresholds: warn at exactly this many detections in a
	// day, lock at or above the lock threshold.
	SecurityWarnThreshold int64
	SecurityLockThreshold int64
	CacheTTLSeconds       int
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		StorageBucket:           getEnv("STORAGE_BUCKET", ""),
		PostgresUrl:             getEnv("POSTGRES_CONN_STR", "http://localhost:5432"),
		MongoURI:                getEnv("MONGO_URI", ""),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		SecurityWarnThreshold:   getEnvInt64("SECURITY_WARN_THRESHOLD", 10),
		SecurityLockThreshold:   getEnvInt64("SECURITY_LOCK_THRESHOLD", 15),
		CacheTTLSeconds:         int(getEnvInt64("CACHE_TTL_SECONDS", 300)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
