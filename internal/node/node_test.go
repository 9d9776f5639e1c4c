package node

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fluxprompt/internal/orchestrator"
	"fluxprompt/internal/params"
	"fluxprompt/internal/translator"
)

type mockGenerator struct {
	result *translator.ServiceResult
	err    error
	calls  int
}

func (m *mockGenerator) Generate(ctx context.Context, cfg translator.ServiceConfig, req translator.GenerateRequest) (*translator.ServiceResult, error) {
	m.calls++
	return m.result, m.err
}

func TestTranslator_Passthrough(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		enabled  bool
		positive string
	}{
		{
			name:     "disabled switch",
			text:     "海边，日出",
			enabled:  false,
			positive: "海边,日出",
		},
		{
			name:     "no chinese in input",
			text:     "beach, sunrise",
			enabled:  true,
			positive: "beach, sunrise",
		},
		{
			name:     "undefined placeholder becomes empty",
			text:     "undefined",
			enabled:  true,
			positive: "",
		},
		{
			name:     "empty input",
			text:     "",
			enabled:  true,
			positive: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &mockGenerator{}
			tr := New(gen)

			out, err := tr.Translate(context.Background(), translator.ServiceConfig{}, tt.text, tt.enabled)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gen.calls != 0 {
				t.Errorf("pass-through must not call the generator, got %d calls", gen.calls)
			}
			if out.Positive != tt.positive {
				t.Errorf("positive = %q, want %q", out.Positive, tt.positive)
			}
			if out.Negative != "" {
				t.Errorf("expected empty negative prompt, got %q", out.Negative)
			}
			if out.NumImages != params.DefaultNumImages || out.Steps != params.DefaultSteps || out.CFG != params.DefaultCFG {
				t.Errorf("expected default knobs, got %+v", out)
			}
		})
	}
}

func TestTranslator_Translate(t *testing.T) {
	gen := &mockGenerator{
		result: &translator.ServiceResult{
			ServiceName: "mock",
			Prompt: params.Prompt{
				Positive:  "beach ，sunrise。 golden light",
				Negative:  "noise ,blur",
				NumImages: 2,
				Steps:     30,
				CFG:       7.5,
			},
		},
	}
	tr := New(gen)

	out, err := tr.Translate(context.Background(), translator.ServiceConfig{APIKey: "key"}, "海边，日出", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("expected one generator call, got %d", gen.calls)
	}
	if out.Positive != "beach,sunrise, golden light" {
		t.Errorf("positive not normalized: %q", out.Positive)
	}
	if out.Negative != "noise,blur" {
		t.Errorf("negative not normalized: %q", out.Negative)
	}
	if out.NumImages != 2 || out.Steps != 30 || out.CFG != 7.5 {
		t.Errorf("unexpected knobs: %+v", out)
	}
}

func TestTranslator_GeneratorError(t *testing.T) {
	gen := &mockGenerator{err: errors.New("boom")}
	tr := New(gen)

	_, err := tr.Translate(context.Background(), translator.ServiceConfig{}, "海边", true)
	if err == nil {
		t.Error("expected error to propagate")
	}
}

func TestTranslator_WithOrchestrator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"positive_prompt": "sunrise at the beach, golden light", "negative_prompt": "noise", "num_images": 1, "steps": 20, "cfg": 5.0}`}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	svc := translator.NewBigModelService("test-key", server.URL, "")
	orch := orchestrator.New([]translator.PromptService{svc}, orchestrator.Config{
		Timeout:     5 * time.Second,
		MinServices: 1,
	})
	tr := New(orch)

	out, err := tr.Translate(context.Background(), translator.ServiceConfig{}, "海边的日出", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Positive != "sunrise at the beach, golden light" {
		t.Errorf("unexpected positive prompt: %q", out.Positive)
	}
	if out.Negative != "noise" {
		t.Errorf("unexpected negative prompt: %q", out.Negative)
	}
}
