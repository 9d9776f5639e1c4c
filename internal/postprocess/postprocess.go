// Package postprocess removes common LLM artifacts from prompt-generation
// output before field extraction, and normalizes the extracted keyword lists.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from raw model output and returns the trimmed
// result:
//  1. Thinking / reasoning block removal (including an orphan closing tag)
//  2. Code fence unwrapping
//  3. Instruction echo removal (prompt leakage)
//  4. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = unwrapCodeFence(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>`,
)

// orphanCloseRe matches a dangling closing tag with no opening tag left in
// the text. Some reasoning models emit the thought without its opening tag,
// leaving a bare closer; everything up to and including the closer goes.
var orphanCloseRe = regexp.MustCompile(
	`(?is)^.*?</(?:thinking|think|reasoning)>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = orphanCloseRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: code fences ---

// fencedRe matches output wrapped entirely in a single ```lang … ``` fence,
// the usual shape when a model is asked for "only JSON".
var fencedRe = regexp.MustCompile("(?s)\\A```\\w*[\r\n]+(.*?)[\r\n]*```\\s*\\z")

func unwrapCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fencedRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// --- Phase 3: instruction echoes ---

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to.  Each pattern is anchored to the start of the string
// and requires a colon to reduce false positives on legitimate content.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the] [generated|requested] [JSON|output|prompt]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:generated |requested )?(?:json(?: object)?|output|prompts?|result)\s*:`),
	// "[The] [JSON|output|result]:"
	regexp.MustCompile(`(?i)^(?:the )?(?:json(?: object)?|output|result)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] JSON:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:generated |requested )?(?:json(?: object)?|output|prompts?|result)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 4: quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them (a common LLM artifact).  Supported pairs:
//
//	"…"  '…'  «…»  "…"  '…'
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	// A leading quote before a JSON object is content, not wrapping.
	if runes[0] == '"' && strings.ContainsRune(text, '{') {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') || // " "
		(first == '‘' && last == '’') { //  ' '
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

// --- Keyword list normalization ---

var spaceBeforeCommaRe = regexp.MustCompile(`\s+,`)

// NormalizeList prepares a comma-separated keyword list for the image
// pipeline: CJK commas and full stops become ASCII commas, whitespace before
// commas collapses, and the result is trimmed.
func NormalizeList(text string) string {
	text = strings.ReplaceAll(text, "，", ",")
	text = strings.ReplaceAll(text, "。", ",")
	text = spaceBeforeCommaRe.ReplaceAllString(text, ",")
	return strings.TrimSpace(text)
}
