// Package detector answers two questions about input text: does it contain
// Chinese at all (the cheap gate deciding whether translation runs), and
// what language is it written in (used by the validator).
package detector

import (
	lingua "github.com/pemistahl/lingua-go"
)

// ContainsChinese reports whether text contains at least one CJK unified
// ideograph. This is the gate the node uses: descriptions without Chinese
// pass through untranslated.
func ContainsChinese(text string) bool {
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fa5 {
			return true
		}
	}
	return false
}

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over all lingua languages. Construction is expensive;
// reuse the instance.
func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}
