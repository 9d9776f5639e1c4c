package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// completionBody builds a minimal chat-completions response around content.
func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 100, "completion_tokens": 50},
	})
	if err != nil {
		t.Fatalf("failed to build body: %v", err)
	}
	return body
}

func TestBigModelService_Name(t *testing.T) {
	svc := NewBigModelService("key", "", "")
	if svc.Name() != "bigmodel" {
		t.Errorf("expected 'bigmodel', got %q", svc.Name())
	}
}

func TestBigModelService_Generate_NoAPIKey(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	svc := NewBigModelService("", server.URL, "")

	result, err := svc.Generate(context.Background(), ServiceConfig{}, GenerateRequest{Text: "海边，日出"})

	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result.Error == "" {
		t.Error("expected error message in result")
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("expected no network request before credential check, got %d", n)
	}
}

func TestBigModelService_Generate_RemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	svc := NewBigModelService("bad-key", server.URL, "")

	result, err := svc.Generate(context.Background(), ServiceConfig{}, GenerateRequest{Text: "海边，日出"})

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected *RemoteError, got %v", err)
	}
	if remoteErr.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", remoteErr.StatusCode, http.StatusForbidden)
	}
	if result.Prompt.Positive != "" {
		t.Errorf("remote error must not yield a prompt, got %q", result.Prompt.Positive)
	}
}

func TestBigModelService_Generate_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	svc := NewBigModelService("key", server.URL, "")

	_, err := svc.Generate(context.Background(), ServiceConfig{}, GenerateRequest{Text: "海边，日出"})

	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestBigModelService_Generate_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	svc := NewBigModelService("key", server.URL, "")

	_, err := svc.Generate(context.Background(), ServiceConfig{}, GenerateRequest{Text: "海边，日出"})

	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestBigModelService_Generate_UnusableContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, "I cannot help with that."))
	}))
	defer server.Close()

	svc := NewBigModelService("key", server.URL, "")

	_, err := svc.Generate(context.Background(), ServiceConfig{}, GenerateRequest{Text: "海边，日出"})

	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse for content without fields, got %v", err)
	}
}

func TestBigModelService_Generate_Success(t *testing.T) {
	content := "<think>用户想要海边日出的场景</think>```json\n" +
		`{
			"positive_prompt": "sunrise over the sea, golden light, high detail",
			"negative_prompt": "noise, blur",
			"num_images": 3,
			"steps": 30,
			"cfg": 7.5
		}` + "\n```"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write(completionBody(t, content))
	}))
	defer server.Close()

	svc := NewBigModelService("test-key", server.URL, "")

	result, err := svc.Generate(context.Background(), ServiceConfig{}, GenerateRequest{Text: "你好世界"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := result.Prompt
	if p.Positive == "" {
		t.Error("expected non-empty positive prompt")
	}
	if p.Positive != "sunrise over the sea, golden light, high detail" {
		t.Errorf("unexpected positive prompt: %q", p.Positive)
	}
	if p.Negative != "noise, blur" {
		t.Errorf("unexpected negative prompt: %q", p.Negative)
	}
	if p.NumImages != 3 || p.Steps != 30 || p.CFG != 7.5 {
		t.Errorf("unexpected knobs: %+v", p)
	}
	if result.Metadata["model"] != "glm-z1-flash" {
		t.Errorf("unexpected model metadata: %q", result.Metadata["model"])
	}
}

func TestBigModelService_Generate_ClampsModelValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, `{"positive_prompt": "beach", "num_images": 10, "steps": 5, "cfg": 0.1}`))
	}))
	defer server.Close()

	svc := NewBigModelService("key", server.URL, "")

	result, err := svc.Generate(context.Background(), ServiceConfig{}, GenerateRequest{Text: "海边"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := result.Prompt
	if p.NumImages != 1 {
		t.Errorf("num_images = %d, want 1", p.NumImages)
	}
	if p.Steps != 15 {
		t.Errorf("steps = %d, want 15", p.Steps)
	}
	if p.CFG != 5.0 {
		t.Errorf("cfg = %f, want 5.0", p.CFG)
	}
}

func TestBigModelService_ConfigKeyFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer cfg-key" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		w.Write(completionBody(t, `{"positive_prompt": "beach"}`))
	}))
	defer server.Close()

	svc := NewBigModelService("", server.URL, "")

	_, err := svc.Generate(context.Background(), ServiceConfig{APIKey: "cfg-key"}, GenerateRequest{Text: "海边"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBigModelService_IsAvailable(t *testing.T) {
	if err := NewBigModelService("key", "", "").IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := NewBigModelService("", "", "").IsAvailable(context.Background()); err == nil {
		t.Error("expected error when no API key")
	}
}

func TestBigModelService_Generate_ConfigTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.Write(completionBody(t, `{"positive_prompt": "beach"}`))
	}))
	defer server.Close()

	svc := NewBigModelService("key", server.URL, "")

	start := time.Now()
	_, err := svc.Generate(context.Background(), ServiceConfig{Timeout: 30 * time.Millisecond}, GenerateRequest{Text: "海边"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Errorf("config timeout not honored, call took %v", time.Since(start))
	}
}
