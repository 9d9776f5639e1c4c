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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fluxprompt",
	Short: "Chinese-to-CLIP prompt translator for Flux image generation",
	Long: `fluxprompt turns a Chinese scene description into Flux Dev generation
parameters: an English positive/negative CLIP prompt pair plus image count,
sampling steps, and CFG strength, using hosted LLM services.

Supported services: BigModel (Zhipu), OpenRouter, Ollama (self-hosted),
Google Translate (literal fallback).

Use "fluxprompt translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.fluxprompt.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// initConfig loads the optional config file and binds the credential env
// vars.
func initConfig() {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".fluxprompt")
		}
	}

	viper.BindEnv("bigmodel.api_key", "BIGMODEL_API_KEY")
	viper.BindEnv("bigmodel.base_url", "BIGMODEL_API_URL")
	viper.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
