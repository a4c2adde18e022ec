package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// DBDriver selects postgres or sqlite (local dev).
	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	// StorageBackend selects local or minio.
	StorageBackend string
	UploadDir      string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "postgres"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "host=localhost user=acadflow password=acadflow dbname=acadflow port=5432 sslmode=disable"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	ttlMinutes := 60
	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttlMinutes = n
		}
	}

	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = "local"
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}

	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "acadflow"
	}

	return Config{
		Port: port,

		DBDriver: driver,
		DBDSN:    dsn,

		JWTSecret: secret,
		TokenTTL:  time.Duration(ttlMinutes) * time.Minute,

		StorageBackend: backend,
		UploadDir:      uploadDir,

		MinIOEndpoint:  endpoint,
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    bucket,
		MinIOUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
}
