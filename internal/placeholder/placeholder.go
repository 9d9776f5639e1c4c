// Package placeholder protects generation syntax embedded in a description
// (<lora:name:0.8> tags, embedding:token references, __wildcard__ tokens)
// from machine translation by replacing it with numbered markers
// ([PH0], [PH1], …). After translation, Restore substitutes the markers back.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// angle-bracket model tags: <lora:detail-tweaker:0.8>, <hypernet:anime:1>
	reModelTag = regexp.MustCompile(`<\w+:[^>]+>`)

	// textual inversion references: embedding:easynegative
	reEmbedding = regexp.MustCompile(`\bembedding:[\w.-]+`)

	// dynamic prompt wildcards: __colors__, __styles/portrait__
	reWildcard = regexp.MustCompile(`__[\w/-]+__`)

	// placeholder reference in translated text
	rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Protect replaces generation syntax with numbered placeholders [PH0],
// [PH1], … in the order they appear in text. It returns the modified text
// and the slice of captured originals so Restore can put them back.
func Protect(text string) (string, []string) {
	var markers []string
	counter := 0

	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", counter)
		markers = append(markers, match)
		counter++
		return id
	}

	// Angle tags first so embedding: inside a tag is not matched twice.
	text = reModelTag.ReplaceAllStringFunc(text, replace)
	text = reEmbedding.ReplaceAllStringFunc(text, replace)
	text = reWildcard.ReplaceAllStringFunc(text, replace)

	return text, markers
}

// Restore substitutes [PHn] markers in text back with the originals captured
// by Protect. Unrecognised indices leave the placeholder as-is.
func Restore(text string, markers []string) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		idx := 0
		fmt.Sscanf(sub[1], "%d", &idx)
		if idx < 0 || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// Validate checks whether all markers that were created by Protect are still
// present in the translated text. It returns the list of missing indices.
func Validate(text string, markers []string) []int {
	var missing []int
	for i := range markers {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}
