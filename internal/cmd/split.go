package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/ndjson"
)

var splitCmd = &cobra.Command{
	Use:   "split <file> <output_dir>",
	Short: "Split an NDJSON export into per-document files",
	Long: `Split a previously exported NDJSON file into individual JSON files.

Each line is decoded independently; lines that fail to parse are reported
and dropped without aborting the run. Documents are named after
attributes.title (spaces and slashes replaced with underscores) or
document_<n> when no title is present. Same-titled documents overwrite
each other.

Examples:
  kbspaces split ./backup/default.json ./backup/default
  kbspaces split export.ndjson ./objects`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := loggerFromContext(cmd.Context())

		written, err := ndjson.SplitFile(args[0], args[1], log)
		if err != nil {
			return err
		}

		log.Info().Str("file", args[0]).Int("documents", written).Str("dir", args[1]).Msg("split export")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
}
