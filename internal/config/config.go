package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"coop-intake-go/pkg/logger"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const dotenvFilename = ".env"

type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	DB              DBConfig
	CRM             CRMConfig
	Notifier        NotifierConfig
	Campaigns       CampaignsConfig
	Proposals       ProposalsConfig
	Blob            BlobConfig
	Admin           AdminConfig
	Worker          WorkerConfig
	RefData         RefDataConfig
}

type DBConfig struct {
	DSN             string        `env:"DB_DSN"`
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD" envDefault:"postgres"`
	Name            string        `env:"DB_NAME" envDefault:"coop_intake"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	TimeZone        string        `env:"DB_TIMEZONE" envDefault:"UTC"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type CRMConfig struct {
	BaseURL           string        `env:"CRM_BASE_URL"`
	APIKey            string        `env:"CRM_API_KEY"`
	Timeout           time.Duration `env:"CRM_TIMEOUT" envDefault:"60s"`
	DownloadTimeout   time.Duration `env:"CRM_DOWNLOAD_TIMEOUT" envDefault:"30s"`
	MaxImageDimension int           `env:"CRM_MAX_IMAGE_DIMENSION" envDefault:"1280"`
	JPEGQuality       int           `env:"CRM_JPEG_QUALITY" envDefault:"80"`
}

type NotifierConfig struct {
	BaseURL string        `env:"NOTIFIER_BASE_URL"`
	Timeout time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"10s"`
}

type CampaignsConfig struct {
	CacheTTL time.Duration `env:"CAMPAIGN_CACHE_TTL" envDefault:"5m"`
}

type ProposalsConfig struct {
	UploadTokenTTL time.Duration `env:"UPLOAD_TOKEN_TTL" envDefault:"168h"`
	BatchSyncDelay time.Duration `env:"BATCH_SYNC_DELAY" envDefault:"500ms"`
	SyncTimeout    time.Duration `env:"CRM_SYNC_TIMEOUT" envDefault:"3m"`
}

type BlobConfig struct {
	Dir            string `env:"BLOB_DIR" envDefault:"data/uploads"`
	MaxUploadBytes int64  `env:"BLOB_MAX_UPLOAD_BYTES" envDefault:"15728640"`
}

type AdminConfig struct {
	User       string        `env:"ADMIN_USER" envDefault:"admin"`
	Password   string        `env:"ADMIN_PASSWORD"`
	SessionTTL time.Duration `env:"ADMIN_SESSION_TTL" envDefault:"24h"`
}

type WorkerConfig struct {
	QueueSize   int           `env:"WORKER_QUEUE_SIZE" envDefault:"256"`
	Workers     int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	TaskTimeout time.Duration `env:"WORKER_TASK_TIMEOUT" envDefault:"5m"`
}

type RefDataConfig struct {
	CitiesFile string `env:"IBGE_CITIES_FILE"`
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

// loadDotEnv loads the nearest .env walking up from the working directory.
// Variables already present in the environment win.
func loadDotEnv(log logger.Logger) error {
	path, err := findDotEnv(dotenvFilename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(path); err != nil {
		return err
	}

	log.Info("dotenv: loaded", "path", path)
	return nil
}

func findDotEnv(filename string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, filename)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
