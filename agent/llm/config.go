package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	openrouterx "github.com/tanpawarit/product-return-agent/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	MaxRetries         int           `envconfig:"MAX_RETRIES" split_words:"true" default:"1"`

	// Validation needs a vision-capable model; recommendation does not.
	ValidationModel           string  `envconfig:"VALIDATION_MODEL" split_words:"true"`
	RecommendationModel       string  `envconfig:"RECOMMENDATION_MODEL" split_words:"true"`
	ValidationTemperature     float32 `envconfig:"VALIDATION_TEMPERATURE" split_words:"true" default:"0"`
	RecommendationTemperature float32 `envconfig:"RECOMMENDATION_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(gateway contractx.GatewayType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch gateway {
	case contractx.GatewayTypeValidation:
		if v := strings.TrimSpace(c.ValidationModel); v != "" {
			modelName = v
		}
		if c.ValidationTemperature >= 0 {
			temp = c.ValidationTemperature
		}
	case contractx.GatewayTypeRecommendation:
		if v := strings.TrimSpace(c.RecommendationModel); v != "" {
			modelName = v
		}
		if c.RecommendationTemperature >= 0 {
			temp = c.RecommendationTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
		MaxRetries:         c.MaxRetries,
	}
}
