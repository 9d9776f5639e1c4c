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
	"fmt"

	"github.com/spf13/cobra"

	"fluxprompt/internal/store"
)

var (
	historyDBPath string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the translation request history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded requests and their final prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		entries, err := db.ListHistory(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No requests recorded")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %s  [%s]  %s\n", e.RequestID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.SelectedService, e.SourceText)
			fmt.Printf("  positive: %s\n", e.Prompt.Positive)
			if e.Prompt.Negative != "" {
				fmt.Printf("  negative: %s\n", e.Prompt.Negative)
			}
			fmt.Printf("  images: %d  steps: %d  cfg: %.1f\n", e.Prompt.NumImages, e.Prompt.Steps, e.Prompt.CFG)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show every service attempt for a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		attempts, err := db.ListAttempts(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list attempts: %w", err)
		}

		if len(attempts) == 0 {
			fmt.Println("No attempts recorded for that request")
			return nil
		}

		for _, a := range attempts {
			if a.Error != "" {
				fmt.Printf("%-12s FAILED (%d ms): %s\n", a.ServiceName, a.LatencyMs, a.Error)
				continue
			}
			fmt.Printf("%-12s %d ms\n", a.ServiceName, a.LatencyMs)
			fmt.Printf("  positive: %s\n", a.Prompt.Positive)
			if a.Prompt.Negative != "" {
				fmt.Printf("  negative: %s\n", a.Prompt.Negative)
			}
		}
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to read stats: %w", err)
		}

		fmt.Printf("Requests:        %d\n", stats.TotalRequests)
		fmt.Printf("Attempts:        %d\n", stats.TotalAttempts)
		fmt.Printf("Failed attempts: %d\n", stats.FailedAttempts)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded history",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(historyDBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		n, err := db.ClearHistory(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}

		fmt.Printf("Deleted %d requests\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyStatsCmd, historyClearCmd)

	historyCmd.PersistentFlags().StringVar(&historyDBPath, "db", "./data/fluxprompt.db", "Database path for the request history")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum entries to list (0 = all)")
}
