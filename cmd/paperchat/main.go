package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "paperchat",
		Short: "RAG chat service over indexed PDF papers",
	}

	root.AddCommand(serveCMD(), ingestCMD(), evalCMD())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
