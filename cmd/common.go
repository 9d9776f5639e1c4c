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
	"fmt"
	"os"

	"fluxprompt/internal/translator"
)

// buildServices constructs the list of prompt services from CLI parameters.
// Service order is preference order: the first successful result wins.
func buildServices(serviceNames []string, bigmodelAPIKey, bigmodelBaseURL, bigmodelModel, openrouterAPIKey, ollamaBaseURL string, openrouterModels, ollamaModels []string) ([]translator.PromptService, error) {
	var list []translator.PromptService

	for _, name := range serviceNames {
		switch name {
		case "bigmodel":
			list = append(list, translator.NewBigModelService(bigmodelAPIKey, bigmodelBaseURL, bigmodelModel))
		case "openrouter":
			list = append(list, translator.NewOpenRouterService(openrouterAPIKey, "", openrouterModels))
		case "ollama":
			list = append(list, translator.NewOllamaService(ollamaBaseURL, ollamaModels))
		case "google":
			list = append(list, translator.NewGoogleService())
		default:
			fmt.Fprintf(os.Stderr, "Unknown service: %s, skipping\n", name)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid services configured")
	}
	return list, nil
}
