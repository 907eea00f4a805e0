package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kparks44/rumble-backend/internal/battle"
)

type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string
	Rules          battle.Rules
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "production"),
		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS",
			"http://localhost:3000,https://roastrumble.com,https://www.roastrumble.com")),
		Rules: battle.Rules{
			TurnSeconds:        getEnvInt("TURN_SECONDS", 90),
			CountdownSeconds:   getEnvInt("COUNTDOWN_SECONDS", 5),
			AudioBudgetSeconds: getEnvInt("AUDIO_BUDGET_SECONDS", 360),
			MaxSwitches:        getEnvInt("MAX_SWITCHES", 4),
			WordChangeLimit:    getEnvInt("WORD_CHANGE_LIMIT", 2),
			DebounceWindow:     time.Duration(getEnvInt("SWITCH_DEBOUNCE_MS", 1000)) * time.Millisecond,
		},
	}
}

func (c *Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
