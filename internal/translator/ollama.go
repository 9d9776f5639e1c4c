package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

var DefaultOllamaModels = []string{
	"qwen2.5:7b",
	"llama3.2",
	"gemma2:9b",
}

// OllamaService is the self-hosted fallback. No credential: availability is
// the reachability of the local server.
type OllamaService struct {
	baseURL string
	models  []string
	client  *http.Client
}

func NewOllamaService(baseURL string, models []string) *OllamaService {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if len(models) == 0 {
		models = DefaultOllamaModels
	}
	return &OllamaService{
		baseURL: baseURL,
		models:  models,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OllamaService) Name() string {
	return "ollama"
}

func (s *OllamaService) getRandomModel() string {
	if len(s.models) == 0 {
		return DefaultOllamaModels[0]
	}
	return s.models[rand.Intn(len(s.models))]
}

func (s *OllamaService) SetModels(models []string) {
	if len(models) > 0 {
		s.models = models
	}
}

func (s *OllamaService) Generate(ctx context.Context, cfg ServiceConfig, req GenerateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	model := cfg.Model
	if model == "" {
		model = s.getRandomModel()
	}

	prompt := fmt.Sprintf("%s\n\n用户描述：%s", systemPrompt, req.Text)

	ollamaReq := map[string]interface{}{
		"model":  model,
		"prompt": prompt,
		"stream": false,
	}

	jsonData, err := json.Marshal(ollamaReq)
	if err != nil {
		result.Error = fmt.Sprintf("failed to marshal request: %v", err)
		return result, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		remoteErr := &RemoteError{Service: s.Name(), StatusCode: resp.StatusCode}
		result.Error = remoteErr.Error()
		return result, remoteErr
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	result.RawContent = ollamaResp.Response

	parsed, err := parsePromptContent(ollamaResp.Response)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	result.Prompt = parsed
	result.Metadata = map[string]string{"model": model}

	return result, nil
}

func (s *OllamaService) IsAvailable(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *OllamaService) GetModels() []string {
	return s.models
}
