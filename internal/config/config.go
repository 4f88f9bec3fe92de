package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds object storage settings. Driver selects the backend:
// "minio" for any S3-compatible endpoint through minio-go, "s3" for AWS S3
// through aws-sdk-go-v2.
type StorageConfig struct {
	Driver    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// LinkExpiry is the default lifetime of presigned download links.
	LinkExpiry time.Duration
}

// AuthConfig holds the settings needed to verify tokens issued by the users service.
type AuthConfig struct {
	JWTSecret  string
	CookieName string
}

// GeneratorConfig controls how PDFs are produced from templates.
type GeneratorConfig struct {
	// DefaultStrategy is "remote" (Google Docs) or "local" (docx + soffice).
	DefaultStrategy string
	// TemplateDir overrides the embedded docx templates when set.
	TemplateDir string
	// ConverterBin is the headless office converter executable.
	ConverterBin string
	// WorkDir receives temporary source and converted files. Empty uses os.TempDir.
	WorkDir            string
	ConverterTimeout   time.Duration
	MaxConcurrentConvs int
}

// GoogleConfig holds the Google Docs/Drive settings for remote generation.
type GoogleConfig struct {
	CredentialsFile string
	// Template ids keyed by document kind.
	MedicalTemplateID       string
	PsychologicalTemplateID string
	RequestsPerSecond       float64
	Burst                   int
}

// SiblingConfig points at the documents service that owns credentials and
// psychometric files.
type SiblingConfig struct {
	DocumentsBaseURL string
	Timeout          time.Duration
}

// OverlayPreset is a named stamping position, in PDF points. Page is
// "first", "last" or a 1-based page number.
type OverlayPreset struct {
	Page   string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// StampConfig holds overlay presets keyed by preset name.
type StampConfig struct {
	Presets map[string]OverlayPreset
}

// Preset names used by the form workflows.
const (
	PresetMedicSignature        = "medic_signature"
	PresetPsychologistSignature = "psychologist_signature"
	PresetPsychometricQR        = "psychometric_qr"
)

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost   string
	Port      string
	TimeZone  string
	Database  DatabaseConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Generator GeneratorConfig
	Google    GoogleConfig
	Sibling   SiblingConfig
	Stamp     StampConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		TimeZone: getEnv("APP_TIMEZONE", "America/Santiago"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", "minio"),
			Endpoint:   getEnv("STORAGE_ENDPOINT", ""),
			Region:     getEnv("STORAGE_REGION", "us-east-1"),
			AccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey:  getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:     getEnv("STORAGE_BUCKET", ""),
			UseSSL:     getEnvBool("STORAGE_USE_SSL", false),
			LinkExpiry: getEnvDuration("STORAGE_LINK_EXPIRY", 15*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			CookieName: getEnv("JWT_COOKIE_NAME", "JWT"),
		},
		Generator: GeneratorConfig{
			DefaultStrategy:    getEnv("GENERATOR_STRATEGY", "remote"),
			TemplateDir:        getEnv("TEMPLATE_DIR", ""),
			ConverterBin:       getEnv("CONVERTER_BIN", "soffice"),
			WorkDir:            getEnv("CONVERTER_WORK_DIR", ""),
			ConverterTimeout:   getEnvDuration("CONVERTER_TIMEOUT", 60*time.Second),
			MaxConcurrentConvs: getEnvInt("CONVERTER_MAX_CONCURRENCY", 1),
		},
		Google: GoogleConfig{
			CredentialsFile:         getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			MedicalTemplateID:       getEnv("GOOGLE_MEDICAL_TEMPLATE_ID", ""),
			PsychologicalTemplateID: getEnv("GOOGLE_PSYCHOLOGICAL_TEMPLATE_ID", ""),
			RequestsPerSecond:       getEnvFloat("GOOGLE_REQUESTS_PER_SECOND", 5),
			Burst:                   getEnvInt("GOOGLE_BURST", 10),
		},
		Sibling: SiblingConfig{
			DocumentsBaseURL: getEnv("DOCUMENTS_SERVICE_URL", "http://localhost:8083"),
			Timeout:          getEnvDuration("DOCUMENTS_SERVICE_TIMEOUT", 30*time.Second),
		},
		Stamp: StampConfig{
			Presets: map[string]OverlayPreset{
				PresetMedicSignature:        getEnvPreset("STAMP_MEDIC_SIGNATURE", OverlayPreset{Page: "last", X: 284, Y: 45, Width: 50, Height: 50}),
				PresetPsychologistSignature: getEnvPreset("STAMP_PSYCHOLOGIST_SIGNATURE", OverlayPreset{Page: "last", X: 183, Y: 241, Width: 50, Height: 50}),
				PresetPsychometricQR:        getEnvPreset("STAMP_PSYCHOMETRIC_QR", OverlayPreset{Page: "first", X: 195, Y: 570, Width: 67, Height: 67}),
			},
		},
	}
}

// Location resolves TimeZone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvPreset parses "page,x,y,width,height", e.g. "last,284,45,50,50".
func getEnvPreset(key string, def OverlayPreset) OverlayPreset {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	if len(parts) != 5 {
		return def
	}
	nums := make([]float64, 4)
	for i, p := range parts[1:] {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return def
		}
		nums[i] = f
	}
	return OverlayPreset{
		Page:   strings.TrimSpace(parts[0]),
		X:      nums[0],
		Y:      nums[1],
		Width:  nums[2],
		Height: nums[3],
	}
}
