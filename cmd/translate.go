/*
Copyright © 2026 The fluxprompt authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fluxprompt/internal"
	"fluxprompt/internal/detector"
	"fluxprompt/internal/node"
	"fluxprompt/internal/orchestrator"
	"fluxprompt/internal/params"
	"fluxprompt/internal/store"
	"fluxprompt/internal/translator"
	"fluxprompt/internal/validator"
)

var (
	inputFile  string
	jsonOutput bool

	services []string

	bigmodelKey   string
	bigmodelURL   string
	bigmodelModel string

	openrouterKey    string
	openrouterModels []string

	ollamaURL    string
	ollamaModels []string

	credentials string
	projectID   string

	noTranslate bool
	validate    bool

	dbPath    string
	noHistory bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [description]",
	Short: "Turn a Chinese description into Flux generation parameters",
	Long: `Turn a Chinese scene description into Flux Dev generation parameters:
an English positive/negative CLIP prompt pair plus num_images, steps, and cfg.

The description is taken from the argument, --input, or stdin. Input without
any Chinese passes through unchanged with default parameters.

Available services:
  - bigmodel    BigModel / Zhipu GLM (requires API key)
  - openrouter  OpenRouter (requires API key)
  - ollama      Ollama (self-hosted)
  - google      Google Translate literal fallback (requires credentials)

Use multiple services: --services bigmodel,ollama; the first success in
that order wins.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args)
		if err != nil {
			return err
		}

		ctx := context.Background()

		if !noTranslate && !detector.ContainsChinese(text) {
			fmt.Fprintf(os.Stderr, "No Chinese in input, passing through\n")
			noTranslate = true
		}

		if noTranslate {
			return printOutput(node.FromPrompt(params.Passthrough(text)))
		}

		if bigmodelKey == "" {
			bigmodelKey = viper.GetString("bigmodel.api_key")
		}
		if bigmodelURL == "" {
			bigmodelURL = viper.GetString("bigmodel.base_url")
		}
		if openrouterKey == "" {
			openrouterKey = viper.GetString("openrouter.api_key")
		}

		serviceList, err := buildServices(services, bigmodelKey, bigmodelURL, bigmodelModel, openrouterKey, ollamaURL, openrouterModels, ollamaModels)
		if err != nil {
			return err
		}

		orch := orchestrator.New(serviceList, orchestrator.Config{
			Timeout:     60 * time.Second,
			MinServices: 1,
		})

		cfg := translator.ServiceConfig{
			APIKey:      bigmodelKey,
			Credentials: credentials,
			ProjectID:   projectID,
		}

		fmt.Fprintf(os.Stderr, "Translating description (%d runes)...\n", len([]rune(text)))

		result := orch.Execute(ctx, cfg, translator.GenerateRequest{Text: text})
		if result.Succeeded == 0 {
			if len(result.Errors) > 0 {
				return fmt.Errorf("all prompt services failed: %w", result.Errors[0])
			}
			return fmt.Errorf("all prompt services failed")
		}

		selected := result.Results[0]
		fmt.Fprintf(os.Stderr, "Using result from %s\n", selected.ServiceName)

		out := node.FromPrompt(selected.Prompt)

		if validate {
			v := validator.New()
			if ok, verr := v.IsValid(out.Positive); !ok {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", verr)
			}
		}

		if !noHistory && dbPath != "" {
			if err := saveHistory(ctx, text, result, selected.ServiceName, out); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to record history: %v\n", err)
			}
		}

		return printOutput(out)
	},
}

func readInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// saveHistory records the request, every service attempt, and the selected
// final prompt. History failures never fail the translation.
func saveHistory(ctx context.Context, text string, result *orchestrator.Result, selectedService string, out node.Output) error {
	db, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	reqID := uuid.New().String()
	if err := db.SaveRequest(ctx, internal.TranslationRequest{
		ID:         reqID,
		SourceText: text,
		Timestamp:  time.Now(),
	}); err != nil {
		return err
	}

	for _, r := range result.Results {
		_ = db.SaveResult(ctx, reqID, r.ServiceName, r.Prompt, int(r.Latency.Milliseconds()), r.Error)
	}
	for _, r := range result.Failures {
		_ = db.SaveResult(ctx, reqID, r.ServiceName, r.Prompt, int(r.Latency.Milliseconds()), r.Error)
	}

	return db.SaveFinalPrompt(ctx, reqID, selectedService, params.Prompt{
		Positive:  out.Positive,
		Negative:  out.Negative,
		NumImages: out.NumImages,
		Steps:     out.Steps,
		CFG:       out.CFG,
	})
}

func printOutput(out node.Output) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"positive_prompt": out.Positive,
			"negative_prompt": out.Negative,
			"num_images":      out.NumImages,
			"steps":           out.Steps,
			"cfg":             out.CFG,
		})
	}

	fmt.Printf("Positive prompt: %s\n", out.Positive)
	fmt.Printf("Negative prompt: %s\n", out.Negative)
	fmt.Printf("Images: %d  Steps: %d  CFG: %.1f\n", out.NumImages, out.Steps, out.CFG)
	return nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file with the description (stdin if omitted)")
	translateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	translateCmd.Flags().StringSliceVar(&services, "services", []string{"bigmodel"}, "Prompt services to use, in preference order (comma-separated)")

	translateCmd.Flags().StringVar(&bigmodelKey, "bigmodel-key", "", "BigModel API key (or BIGMODEL_API_KEY)")
	translateCmd.Flags().StringVar(&bigmodelURL, "bigmodel-url", "", "BigModel base URL (or BIGMODEL_API_URL)")
	translateCmd.Flags().StringVar(&bigmodelModel, "bigmodel-model", "", "BigModel model name (default glm-z1-flash)")

	translateCmd.Flags().StringVar(&openrouterKey, "openrouter-key", "", "OpenRouter API key (or OPENROUTER_API_KEY)")
	translateCmd.Flags().StringSliceVar(&openrouterModels, "openrouter-models", nil, "OpenRouter models to rotate (default list used if empty)")

	translateCmd.Flags().StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Ollama base URL")
	translateCmd.Flags().StringSliceVar(&ollamaModels, "ollama-models", nil, "Ollama models to rotate (default list used if empty)")

	translateCmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to Google Cloud credentials (google service)")
	translateCmd.Flags().StringVarP(&projectID, "project", "p", "", "Google Cloud Project ID (google service)")

	translateCmd.Flags().BoolVar(&noTranslate, "no-translate", false, "Pass the description through without calling any service")
	translateCmd.Flags().BoolVar(&validate, "validate", false, "Warn when the generated prompt does not look English")

	translateCmd.Flags().StringVar(&dbPath, "db", "./data/fluxprompt.db", "Database path for the request history")
	translateCmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the request in the history log")
}
