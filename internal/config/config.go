package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	// Telegram
	BotToken string `validate:"required"`

	// Business display strings
	BusinessName        string
	BusinessDescription string
	BusinessHours       string
	BusinessPhone       string
	BusinessEmail       string
	BusinessLocation    string

	// Payments
	Currency         string `validate:"len=3,alpha"`
	ChapaSecretKey   string `validate:"required"`
	ChapaBaseURL     string `validate:"required,url"`
	ChapaCallbackURL string `validate:"required,url"`
	PayerEmailDomain string `validate:"required,fqdn"`

	// HTTP
	BaseURL string `validate:"required,url"`
	Port    int    `validate:"min=1,max=65535"`

	// Database
	DatabaseURL string `validate:"required"`
}

func Load() *Config {
	baseURL := strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:3000"), "/")

	cfg := &Config{
		// Telegram
		BotToken: getEnv("TELEGRAM_BOT_TOKEN", getEnv("BOT_TOKEN", "")),

		// Business display strings
		BusinessName:        getEnv("BUSINESS_NAME", "Gobez Fitness"),
		BusinessDescription: getEnv("BUSINESS_DESCRIPTION", "Your neighbourhood gym."),
		BusinessHours:       getEnv("BUSINESS_HOURS", "Mon-Sat 06:00-22:00"),
		BusinessPhone:       getEnv("BUSINESS_PHONE", ""),
		BusinessEmail:       getEnv("BUSINESS_EMAIL", ""),
		BusinessLocation:    getEnv("BUSINESS_LOCATION", ""),

		// Payments
		Currency:         strings.ToUpper(getEnv("CURRENCY", "ETB")),
		ChapaSecretKey:   getEnv("CHAPA_SECRET_KEY", ""),
		ChapaBaseURL:     strings.TrimSuffix(getEnv("CHAPA_BASE_URL", "https://api.chapa.co/v1"), "/"),
		ChapaCallbackURL: getEnv("CHAPA_CALLBACK_URL", baseURL+"/api/chapa/callback"),
		PayerEmailDomain: getEnv("PAYER_EMAIL_DOMAIN", "gobezfitness.com"),

		// HTTP
		BaseURL: baseURL,
		Port:    getEnvInt("PORT", 3000),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", getEnv("MONGO_URI", "./gym.db")),
	}

	return cfg
}

// Validate lists every setting that fails its constraint.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			names := make([]string, 0, len(fields))
			for _, f := range fields {
				names = append(names, fmt.Sprintf("%s (%s)", f.Field(), f.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(names, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ReturnURL is where Chapa sends the payer after checkout.
func (c *Config) ReturnURL() string {
	return c.BaseURL + "/success"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
