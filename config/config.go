package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"board-finder/internal/domain/entity"
)

type Config struct {
	TelegramToken string
	DatabasePath  string        // CATALOG_DB
	ImageDir      string        // CATALOG_IMAGE_DIR
	Policy        entity.Policy // MATCH_POLICY
	Threshold     int           // MATCH_THRESHOLD, 0 = порог политики
	QualityGate   bool          // QUALITY_GATE
	VideoFrames   int           // VIDEO_FRAMES
	LogLevel      slog.Level    // LOG_LEVEL
}

// MatchThreshold действующий порог: явный или по политике
func (c *Config) MatchThreshold() int {
	if c.Threshold > 0 {
		return c.Threshold
	}
	return c.Policy.Threshold()
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DatabasePath:  getenv("CATALOG_DB", "chapas.db"),
		ImageDir:      getenv("CATALOG_IMAGE_DIR", "chapas"),
		VideoFrames:   5,
		LogLevel:      slog.LevelInfo,
	}

	policy, err := entity.ParsePolicy(os.Getenv("MATCH_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("MATCH_POLICY: %w", err)
	}
	cfg.Policy = policy

	if v := os.Getenv("MATCH_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > entity.FingerprintBits {
			return nil, fmt.Errorf("MATCH_THRESHOLD: want 0..%d, got %q", entity.FingerprintBits, v)
		}
		cfg.Threshold = n
	}

	if v := os.Getenv("QUALITY_GATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("QUALITY_GATE: %w", err)
		}
		cfg.QualityGate = b
	}

	if v := os.Getenv("VIDEO_FRAMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("VIDEO_FRAMES: want positive number, got %q", v)
		}
		cfg.VideoFrames = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
