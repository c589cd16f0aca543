package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List registered source collectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := buildRegistry(cfg)
		for _, name := range reg.AllNames() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
