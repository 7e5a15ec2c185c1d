package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The backend keys and the admin secret are the
// four values the service cannot start without.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	BackendURL        string // managed backend endpoint, e.g. https://xyz.supabase.co
	BackendPublicKey  string // public (anon) key of the backend
	BackendServiceKey string // privileged (service role) key of the backend
	AdminSecret       string // shared secret expected in x-admin-secret
	AdminSecretBcrypt string // optional bcrypt hash accepted instead of AdminSecret

	DBDriver string // "mysql" or "postgres"
	DBUser   string // database username
	DBPass   string // database password (optional)
	DBHost   string // database host address
	DBPort   string // database port number
	DBName   string // database name
	DBSSL    string // postgres sslmode

	Storage StorageConfig

	JWTSecret     string // secret used to sign admin session tokens
	SessionTTLMin int    // admin session lifetime in minutes

	UploadMaxBytes int64 // upper bound of an admin multipart body
	PhotoMaxDim    int   // photos larger than this are downscaled; 0 disables
}

// StorageConfig describes the S3 compatible object storage of the backend.
type StorageConfig struct {
	Endpoint        string // S3 endpoint, defaults to {BackendURL}/storage/v1/s3
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PublicBase      string // base of public object URLs, {BackendURL}/storage/v1/object/public
	UsePathStyle    bool
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is applied first when it
// exists.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	backend := strings.TrimRight(must("BACKEND_URL"), "/")
	publicKey := must("BACKEND_PUBLIC_KEY")
	serviceKey := must("BACKEND_SERVICE_KEY")
	adminSecret := must("ADMIN_SECRET")

	cfg := Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		BackendURL:        backend,
		BackendPublicKey:  publicKey,
		BackendServiceKey: serviceKey,
		AdminSecret:       adminSecret,
		AdminSecretBcrypt: os.Getenv("ADMIN_SECRET_BCRYPT"),
		DBDriver:          envStr("DB_DRIVER", "postgres"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		DBSSL:             envStr("DB_SSLMODE", "require"),
		Storage:           LoadStorageConfig(backend, publicKey, serviceKey),
		JWTSecret:         envStr("JWT_SECRET", adminSecret),
		SessionTTLMin:     envInt("ADMIN_SESSION_TTL_MIN", 120),
		UploadMaxBytes:    int64(envInt("UPLOAD_MAX_BYTES", 50<<20)),
		PhotoMaxDim:       envInt("PHOTO_MAX_DIM", 0),
	}
	return cfg
}

// LoadStorageConfig reads the STORAGE_* variables.  Credentials default to
// the backend keys so a plain managed-backend deployment needs no extra
// settings.
func LoadStorageConfig(backend, publicKey, serviceKey string) StorageConfig {
	return StorageConfig{
		Endpoint:        envStr("STORAGE_S3_ENDPOINT", backend+"/storage/v1/s3"),
		Region:          envStr("STORAGE_REGION", "auto"),
		AccessKeyID:     envStr("STORAGE_ACCESS_KEY_ID", publicKey),
		SecretAccessKey: envStr("STORAGE_SECRET_ACCESS_KEY", serviceKey),
		PublicBase:      strings.TrimRight(envStr("STORAGE_PUBLIC_BASE", backend+"/storage/v1/object/public"), "/"),
		UsePathStyle:    envBool("STORAGE_PATH_STYLE", true),
	}
}

// SessionTTL returns the admin session lifetime.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
