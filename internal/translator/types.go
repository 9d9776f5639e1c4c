package translator

import (
	"context"
	"time"

	"fluxprompt/internal/params"
)

type ServiceConfig struct {
	Credentials string `mapstructure:"credentials" json:"credentials"`
	APIKey      string `mapstructure:"api_key" json:"api_key"`
	Model       string `mapstructure:"model" json:"model"`
	BaseURL     string `mapstructure:"base_url" json:"base_url"`
	// Timeout bounds a single Generate call; zero keeps the backend default.
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID string        `mapstructure:"project_id" json:"project_id"`
}

// GenerateRequest carries the source description. The target shape is fixed
// by the system prompt.
type GenerateRequest struct {
	Text string `json:"text"`
}

type ServiceResult struct {
	ServiceName string            `json:"service_name"`
	Prompt      params.Prompt     `json:"prompt"`
	RawContent  string            `json:"raw_content,omitempty"`
	Metadata    map[string]string `json:"metadata"`
	Latency     time.Duration     `json:"latency"`
	Error       string            `json:"error,omitempty"`
}

// PromptService turns a Chinese scene description into Flux generation
// parameters via one synchronous call to a hosted model.
type PromptService interface {
	Name() string
	Generate(ctx context.Context, cfg ServiceConfig, req GenerateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
}
