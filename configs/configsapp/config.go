package configsapp

import (
	"os"
	"strconv"
	"time"

	"anket.link/configs/configslog"

	"github.com/joho/godotenv"
)

// Config uygulama genel ayarlarını tutar (.env üzerinden).
type Config struct {
	AppEnv     string
	ListenAddr string

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	OTPTTL time.Duration

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

var cfg *Config

// LoadConfig .env dosyasını okur ve Config'i doldurur.
// .env bulunamazsa ortam değişkenleriyle devam edilir.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		if configslog.SLog != nil {
			configslog.SLog.Warn(".env dosyası bulunamadı, ortam değişkenleri kullanılacak.")
		}
	}

	cfg = &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":3000"),
		JWTAccessSecret:  getEnv("SECRET_KEY", ""),
		JWTRefreshSecret: getEnv("REFRESH_KEY", ""),
		AccessTokenTTL:   getEnvDuration("ACCESS_TOKEN_TTL_SECONDS", 300) * time.Second,
		RefreshTokenTTL:  getEnvDuration("REFRESH_TOKEN_TTL_SECONDS", 86400) * time.Second,
		OTPTTL:           getEnvDuration("OTP_TTL_SECONDS", 300) * time.Second,
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPass:         getEnv("SMTP_PASS", ""),
		SMTPFrom:         getEnv("SMTP_FROM", ""),
	}
	return cfg
}

// GetConfig yüklü konfigürasyonu döndürür, gerekirse yükler.
func GetConfig() *Config {
	if cfg == nil {
		return LoadConfig()
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallbackSeconds int64) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallbackSeconds)
}
