package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret           string
	JWTExpirationHours  time.Duration
	RefreshTokenTTLDays int

	// Detector là dịch vụ FastAPI nhận diện biển số / tọa độ xe
	DetectorBaseURL string
	DetectorTimeout time.Duration

	AWSRegion     string
	S3ImageBucket string

	// Chính sách tính phí: giờ đầu = price_per_hour của bãi,
	// mỗi giờ sau tăng FeeIncreasePercent %, tối thiểu FeeMinimumHours giờ
	FeeIncreasePercent int
	FeeMinimumHours    int
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Cảnh báo: Không thể tải file .env: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshTTLDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_TTL_DAYS", "7"))
	detectorTimeoutSec, _ := strconv.Atoi(getEnv("DETECTOR_TIMEOUT_SECONDS", "600"))
	feeIncreasePercent, _ := strconv.Atoi(getEnv("FEE_INCREASE_PERCENT", "10"))
	feeMinimumHours, _ := strconv.Atoi(getEnv("FEE_MINIMUM_HOURS", "1"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "smart_parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpirationHours:  time.Duration(jwtExpHours) * time.Hour,
		RefreshTokenTTLDays: refreshTTLDays,

		DetectorBaseURL: getEnv("DETECTOR_BASE_URL", "http://localhost:8000"),
		DetectorTimeout: time.Duration(detectorTimeoutSec) * time.Second, // annotate video có thể rất lâu

		AWSRegion:     getEnv("AWS_REGION", "ap-southeast-1"),
		S3ImageBucket: getEnv("S3_IMAGE_BUCKET", ""),

		FeeIncreasePercent: feeIncreasePercent,
		FeeMinimumHours:    feeMinimumHours,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Biến môi trường '%s' không được đặt, sử dụng giá trị mặc định: '%s'", key, fallback)
	return fallback
}
