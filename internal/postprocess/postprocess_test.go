package postprocess

import "testing"

func TestRemoveThinkingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no thinking blocks",
			input:    `{"positive_prompt": "beach, sunrise"}`,
			expected: `{"positive_prompt": "beach, sunrise"}`,
		},
		{
			name:     "simple think block",
			input:    "Some text<think>translating the description</think>More text",
			expected: "Some textMore text",
		},
		{
			name:     "reasoning block",
			input:    "Start<reasoning>Analyzing the scene</reasoning>End",
			expected: "StartEnd",
		},
		{
			name:     "multiple think blocks",
			input:    "<think>First</think>middle<think>Second</think>",
			expected: "middle",
		},
		{
			name:     "orphan closing tag removes the prefix",
			input:    "the user wants a beach scene</think>{\"steps\": 20}",
			expected: "{\"steps\": 20}",
		},
		{
			name:     "truncated think block (no closing)",
			input:    "<think>generation in progress",
			expected: "",
		},
		{
			name:     "truncated think in middle",
			input:    "Before<thinking>Incomplete",
			expected: "Before",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeThinkingBlocks(tt.input)
			if result != tt.expected {
				t.Errorf("removeThinkingBlocks(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestUnwrapCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fence",
			input:    "```json\n{\"steps\": 20}\n```",
			expected: `{"steps": 20}`,
		},
		{
			name:     "bare fence",
			input:    "```\n{\"steps\": 20}\n```",
			expected: `{"steps": 20}`,
		},
		{
			name:     "no fence untouched",
			input:    `{"steps": 20}`,
			expected: `{"steps": 20}`,
		},
		{
			name:     "fence in the middle untouched",
			input:    "prefix ```json\n{}\n``` suffix",
			expected: "prefix ```json\n{}\n``` suffix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := unwrapCodeFence(tt.input)
			if result != tt.expected {
				t.Errorf("unwrapCodeFence(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRemoveInstructionEchoes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "here is the json",
			input:    `Here is the JSON: {"steps": 20}`,
			expected: `{"steps": 20}`,
		},
		{
			name:     "sure here is the output",
			input:    `Sure, here is the output: {"steps": 20}`,
			expected: `{"steps": 20}`,
		},
		{
			name:     "plain content untouched",
			input:    `{"steps": 20}`,
			expected: `{"steps": 20}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := removeInstructionEchoes(tt.input)
			if result != tt.expected {
				t.Errorf("removeInstructionEchoes(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestClean_FullPipeline(t *testing.T) {
	input := "<think>the scene is a beach at dawn</think>```json\n{\"positive_prompt\": \"beach, dawn\"}\n```"
	expected := `{"positive_prompt": "beach, dawn"}`

	if got := Clean(input); got != expected {
		t.Errorf("Clean(%q) = %q, want %q", input, got, expected)
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "cjk commas replaced",
			input:    "海边，日出。阳光",
			expected: "海边,日出,阳光",
		},
		{
			name:     "space before comma collapsed",
			input:    "beach , sunrise ,golden light",
			expected: "beach,sunrise,golden light",
		},
		{
			name:     "trimmed",
			input:    "  beach, sunrise  ",
			expected: "beach, sunrise",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeList(tt.input); got != tt.expected {
				t.Errorf("NormalizeList(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
