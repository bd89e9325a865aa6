package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort       string
	DatabaseDSN    string
	JWTSecret      string
	CORSOrigins    string
	IssuePhotoPath string // Sorun fotoğraflarının kaydedileceği klasör yolu
}

func Load() *Config {
	v := viper.New()
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=malkabul port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("ISSUE_PHOTO_PATH", "./issue-photos") // Default: local development için
	v.AutomaticEnv()

	cfg := &Config{
		HTTPPort:       v.GetString("HTTP_PORT"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		CORSOrigins:    v.GetString("CORS_ALLOWED_ORIGINS"),
		IssuePhotoPath: v.GetString("ISSUE_PHOTO_PATH"),
	}

	// Production güvenlik kontrolleri
	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET environment değişkeni tanımlanmamış! Production için zorunludur.")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
	}
	if cfg.DatabaseDSN == "host=localhost user=postgres password=postgres dbname=malkabul port=5432 sslmode=disable" {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}

	return cfg
}
