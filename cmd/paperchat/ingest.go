package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/paperchat/config"
	srv "github.com/mohammad-safakhou/paperchat/internal/server"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var ingest = &cobra.Command{
		Use:   "ingest <pdf> [pdf...]",
		Short: "Index PDF papers into the vector store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			app, err := srv.Build(ctx, cfg)
			if err != nil {
				return err
			}

			total := 0
			for _, path := range args {
				n, err := app.Pipeline.IngestFile(ctx, path)
				if err != nil {
					return fmt.Errorf("ingesting %s: %w", path, err)
				}
				total += n
			}
			fmt.Printf("indexed %d chunks from %d file(s)\n", total, len(args))
			return nil
		},
	}
	ingest.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return ingest
}
