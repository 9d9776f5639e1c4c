package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultBigModelBaseURL = "https://open.bigmodel.cn/api/paas/v4"
	defaultBigModelModel   = "glm-z1-flash"
	bigModelTimeout        = 30 * time.Second
	bigModelMaxTokens      = 1024
)

// BigModelService calls the Zhipu BigModel chat-completions API.
type BigModelService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewBigModelService(apiKey, baseURL, model string) *BigModelService {
	if baseURL == "" {
		baseURL = defaultBigModelBaseURL
	}
	if model == "" {
		model = defaultBigModelModel
	}
	return &BigModelService{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: bigModelTimeout},
	}
}

func (s *BigModelService) Name() string {
	return "bigmodel"
}

func (s *BigModelService) Generate(ctx context.Context, cfg ServiceConfig, req GenerateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	apiKey := s.apiKey
	if apiKey == "" && cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		result.Error = "BigModel API key required"
		return result, fmt.Errorf("BigModel: %w", ErrMissingAPIKey)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	model := s.model
	if cfg.Model != "" {
		model = cfg.Model
	}

	body := map[string]interface{}{
		"model":       model,
		"temperature": 0,
		"max_tokens":  bigModelMaxTokens,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Text},
		},
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/chat/completions", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", apiKey))

	logrus.WithFields(logrus.Fields{"service": s.Name(), "model": model}).Debug("sending chat completion request")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		remoteErr := &RemoteError{Service: s.Name(), StatusCode: resp.StatusCode, Body: errResp.Error.Message}
		result.Error = remoteErr.Error()
		return result, remoteErr
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(completion.Choices) == 0 {
		result.Error = "empty response from API"
		return result, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	result.RawContent = completion.Choices[0].Message.Content

	prompt, err := parsePromptContent(result.RawContent)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	result.Prompt = prompt
	result.Metadata = map[string]string{
		"model":             model,
		"prompt_tokens":     fmt.Sprintf("%d", completion.Usage.PromptTokens),
		"completion_tokens": fmt.Sprintf("%d", completion.Usage.CompletionTokens),
	}

	return result, nil
}

func (s *BigModelService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("BigModel: %w", ErrMissingAPIKey)
	}
	return nil
}
