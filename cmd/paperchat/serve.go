package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/paperchat/config"
	srv "github.com/mohammad-safakhou/paperchat/internal/server"
)

func serveCMD() *cobra.Command {
	var cfgPath string
	var addr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}

			app, err := srv.Build(context.Background(), cfg)
			if err != nil {
				return err
			}
			return srv.New(app.Workflow).Start(cfg.Server.Address)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}
