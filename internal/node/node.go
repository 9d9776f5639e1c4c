// Package node is the host-facing adapter: the behavior a node-graph host
// (such as ComfyUI) expects from a prompt-translation node, expressed as a
// plain Go type with no host SDK dependency.
package node

import (
	"context"

	"github.com/sirupsen/logrus"

	"fluxprompt/internal/detector"
	"fluxprompt/internal/params"
	"fluxprompt/internal/postprocess"
	"fluxprompt/internal/translator"
)

// undefinedInput is the placeholder some hosts send for an unconnected
// text input.
const undefinedInput = "undefined"

// Generator is the single call the node depends on. Every PromptService
// satisfies it, as does the orchestrator.
type Generator interface {
	Generate(ctx context.Context, cfg translator.ServiceConfig, req translator.GenerateRequest) (*translator.ServiceResult, error)
}

// Output is the node's five output sockets.
type Output struct {
	Positive  string
	Negative  string
	NumImages int
	Steps     int
	CFG       float64
}

// Translator adapts a Generator to node semantics: input placeholder
// handling, the Chinese gate, pass-through defaults, and keyword list
// normalization on the way out.
type Translator struct {
	gen Generator
}

func New(gen Generator) *Translator {
	return &Translator{gen: gen}
}

// Translate maps one node invocation. When enabled is false, or the input
// contains no Chinese, the input passes through as the positive prompt with
// default knobs and no network call is made.
func (t *Translator) Translate(ctx context.Context, cfg translator.ServiceConfig, text string, enabled bool) (Output, error) {
	if text == undefinedInput {
		text = ""
	}

	if !enabled || !detector.ContainsChinese(text) {
		logrus.WithField("enabled", enabled).Debug("passing prompt through untranslated")
		return FromPrompt(params.Passthrough(text)), nil
	}

	res, err := t.gen.Generate(ctx, cfg, translator.GenerateRequest{Text: text})
	if err != nil {
		return Output{}, err
	}

	return FromPrompt(res.Prompt), nil
}

// FromPrompt converts a parameter bundle into node output sockets,
// normalizing the keyword lists.
func FromPrompt(p params.Prompt) Output {
	return Output{
		Positive:  postprocess.NormalizeList(p.Positive),
		Negative:  postprocess.NormalizeList(p.Negative),
		NumImages: p.NumImages,
		Steps:     p.Steps,
		CFG:       p.CFG,
	}
}
