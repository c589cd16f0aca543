package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoutline/sourcing-cli/internal/email"
	"github.com/scoutline/sourcing-cli/internal/model"
)

var classifyName string

var classifyCmd = &cobra.Command{
	Use:   "classify <email>",
	Short: "Classify an email address's outreach confidence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cls := email.Classify(args[0], "", model.CanonicalProfile{Name: classifyName})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cls)
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "profile name for local-part matching")
	rootCmd.AddCommand(classifyCmd)
}
