// Package params defines the generation parameter bundle produced by the
// prompt services and the clamping rules applied to model-supplied values.
package params

// Generation ranges. The system prompt instructs the model to stay inside
// them, but models ignore instructions often enough that the same rules are
// enforced locally.
const (
	MinNumImages = 1
	MaxNumImages = 4
	MinSteps     = 15
	MaxSteps     = 50
	MinCFG       = 1.0
	MaxCFG       = 15.0

	// Fallback CFG when the model supplies a value below range.
	midCFG = 5.0
)

// Defaults used for pass-through results and missing fields.
const (
	DefaultNumImages = 1
	DefaultSteps     = 20
	DefaultCFG       = 1.0
)

// Prompt is the five-field output bundle: two CLIP prompt keyword lists and
// three numeric generation knobs.
type Prompt struct {
	Positive  string  `json:"positive_prompt"`
	Negative  string  `json:"negative_prompt"`
	NumImages int     `json:"num_images"`
	Steps     int     `json:"steps"`
	CFG       float64 `json:"cfg"`
}

// Passthrough returns the result used when translation is skipped: the input
// becomes the positive prompt and the knobs take their defaults.
func Passthrough(text string) Prompt {
	return Prompt{
		Positive:  text,
		NumImages: DefaultNumImages,
		Steps:     DefaultSteps,
		CFG:       DefaultCFG,
	}
}

// FromFields builds a Prompt from extracted field values, applying defaults
// for missing fields and clamping out-of-range numbers.
//
// Clamping rules follow the generation instructions: num_images outside
// [1,4] resets to 1; steps clamps to [15,50]; cfg below 1.0 resets to 5.0
// and above 15.0 clamps to 15.0.
func FromFields(fields map[string]any) Prompt {
	p := Prompt{
		NumImages: DefaultNumImages,
		Steps:     DefaultSteps,
		CFG:       DefaultCFG,
	}

	if s, ok := asString(fields["positive_prompt"]); ok {
		p.Positive = s
	}
	if s, ok := asString(fields["negative_prompt"]); ok {
		p.Negative = s
	}
	if n, ok := asInt(fields["num_images"]); ok {
		p.NumImages = clampNumImages(n)
	}
	if n, ok := asInt(fields["steps"]); ok {
		p.Steps = clampSteps(n)
	}
	if f, ok := asFloat(fields["cfg"]); ok {
		p.CFG = clampCFG(f)
	}

	return p
}

func clampNumImages(n int) int {
	if n < MinNumImages || n > MaxNumImages {
		return DefaultNumImages
	}
	return n
}

func clampSteps(n int) int {
	if n < MinSteps {
		return MinSteps
	}
	if n > MaxSteps {
		return MaxSteps
	}
	return n
}

func clampCFG(f float64) float64 {
	if f < MinCFG {
		return midCFG
	}
	if f > MaxCFG {
		return MaxCFG
	}
	return f
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
