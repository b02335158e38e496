package main

import (
	"fmt"

	"github.com/deppfellow/go-insurance/internal/lib/email"
	"github.com/spf13/cobra"
)

var emailPreviewCmd = &cobra.Command{
	Use:   "email-preview [template]",
	Short: "Render an email template with sample data",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := email.TemplateClaimDecision
		if len(args) == 1 {
			name = email.Template(args[0])
		}

		html, err := email.Preview(name)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), html)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(emailPreviewCmd)
}
