package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/paperchat/internal/eval"
)

func evalCMD() *cobra.Command {
	var baseURL string
	var evalCmd = &cobra.Command{
		Use:   "eval",
		Short: "Replay the evaluation scenarios against a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := eval.NewHarness(baseURL)
			results, err := h.Run(context.Background(), eval.Scenarios())
			if err != nil {
				return err
			}

			passed, total := eval.Summarize(results)
			fmt.Printf("%d/%d scenarios passed\n", passed, total)
			for _, r := range results {
				if r.Passed {
					continue
				}
				fmt.Printf("FAIL %s:\n", r.Scenario.ID)
				for _, f := range r.Failures {
					fmt.Printf("  - %s\n", f)
				}
			}
			if passed != total {
				return fmt.Errorf("%d scenario(s) failed", total-passed)
			}
			return nil
		},
	}
	evalCmd.Flags().StringVar(&baseURL, "url", "http://localhost:8000", "base URL of the chat API")

	return evalCmd
}
