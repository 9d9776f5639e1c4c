// Package validator checks that a generated positive prompt actually left
// the source language behind.
package validator

import (
	"fmt"
	"strings"

	"fluxprompt/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter keyword lists produce unreliable results and are
// accepted without validation.
const minValidationLength = 20

// Validator checks that a generated prompt is no longer Chinese. CLIP
// embeddings expect English keywords; a Chinese positive prompt means the
// model echoed the description instead of translating it.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator backed by the lingua-go language detector.
func New() *Validator {
	return &Validator{det: detector.New()}
}

// IsValid returns true when positivePrompt appears usable as a CLIP prompt.
//
// An empty prompt fails outright. A prompt still containing Han characters
// fails. Short prompts and prompts whose language cannot be determined pass
// without error; otherwise the detected language must be English.
func (v *Validator) IsValid(positivePrompt string) (bool, error) {
	text := strings.TrimSpace(positivePrompt)
	if text == "" {
		return false, fmt.Errorf("positive prompt is empty")
	}

	if detector.ContainsChinese(text) {
		return false, fmt.Errorf("positive prompt still contains Chinese")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		// Ambiguous language, cannot validate.
		return true, nil
	}

	if !strings.EqualFold(detected, "en") {
		return false, fmt.Errorf("expected English keywords but detected %s", detected)
	}

	return true, nil
}
