package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/output"
)

var spacesCmd = &cobra.Command{
	Use:   "spaces",
	Short: "Inspect spaces on the Kibana instance",
}

var spacesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all spaces",
	Long: `List all spaces visible to the authenticated user.

Examples:
  kbspaces spaces list
  kbspaces spaces list --output json
  kbspaces spaces list -o json --query '.[].id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spaces, err := GetClient().ListSpaces(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list spaces: %w", err)
		}

		if structuredOutputRequested() {
			return printStructured(cmd, spaces)
		}

		table := output.Table{
			Headers: []string{"ID", "NAME", "DESCRIPTION"},
		}
		for _, s := range spaces {
			desc := s.Description
			if s.Reserved {
				desc = strings.TrimSpace(desc + " (reserved)")
			}
			table.Rows = append(table.Rows, []string{s.ID, s.Name, desc})
		}
		return output.PrintTable(stdoutFromContext(cmd.Context()), table)
	},
}

func init() {
	spacesCmd.AddCommand(spacesListCmd)
	rootCmd.AddCommand(spacesCmd)
}
