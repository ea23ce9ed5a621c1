package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminUsername string
	AdminPassword string

	IngestInterval   time.Duration
	SolutionInterval time.Duration

	YouTubeAPIKey      string
	CodechefPlaylist   string
	CodeforcesPlaylist string
	LeetcodePlaylist   string

	ContestCacheTTL time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "contest_tracker_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AdminUsername: getEnv("ADMIN_USER", ""),
		AdminPassword: getEnv("ADMIN_PASS", ""),

		IngestInterval:   time.Duration(getEnvAsInt("CONTEST_UPDATE_INTERVAL_HOURS", 12)) * time.Hour,
		SolutionInterval: time.Duration(getEnvAsInt("SOLUTION_UPDATE_INTERVAL_HOURS", 6)) * time.Hour,

		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),
		CodechefPlaylist:   getEnv("CODECHEF_PLAYLIST_ID", "PLcXpkI9A-RZIZ6lsE0KCcLWeKNoG45fYr"),
		CodeforcesPlaylist: getEnv("CODEFORCES_PLAYLIST_ID", "PLcXpkI9A-RZLUfBSNp-YQBCOezZKbDSgB"),
		LeetcodePlaylist:   getEnv("LEETCODE_PLAYLIST_ID", "PLcXpkI9A-RZI6FhydNz3JBt_-p_i25Cbr"),

		ContestCacheTTL: time.Duration(getEnvAsInt("CONTEST_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
