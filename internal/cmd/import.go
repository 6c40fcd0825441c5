package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
)

var (
	importCreateNewCopies   bool
	importOverwrite         bool
	importCompatibilityMode bool
)

var importCmd = &cobra.Command{
	Use:   "import <import_dir>",
	Short: "Import saved objects into spaces",
	Long: `Import NDJSON export files into Kibana spaces.

Every .json or .ndjson file in the directory is imported into the space
named by the part of the filename before the first dot. Spaces that do
not exist yet are created first.

By default objects are imported as new copies to avoid ID conflicts.
--overwrite and --compatibility-mode require --create-new-copies=false.

A failed import for one file is logged and skipped; remaining files are
still processed.

Examples:
  kbspaces import ./backup
  kbspaces import ./backup --create-new-copies=false --overwrite`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importCreateNewCopies, "create-new-copies", true, "Import objects as new copies, avoiding conflicts")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "Overwrite existing objects (requires --create-new-copies=false)")
	importCmd.Flags().BoolVar(&importCompatibilityMode, "compatibility-mode", false, "Enable compatibility mode (requires --create-new-copies=false)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := loggerFromContext(ctx)
	importDir := args[0]

	opts := api.ImportOptions{
		CreateNewCopies:   importCreateNewCopies,
		Overwrite:         importOverwrite,
		CompatibilityMode: importCompatibilityMode,
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	entries, err := os.ReadDir(importDir)
	if err != nil {
		return fmt.Errorf("failed to read import directory: %w", err)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".json" && ext != ".ndjson" {
			continue
		}

		spaceID, _, _ := strings.Cut(entry.Name(), ".")
		if spaceID == "" {
			continue
		}

		path := filepath.Join(importDir, entry.Name())
		if err := importFile(cmd, path, entry.Name(), spaceID, opts); err != nil {
			log.Error().Str("space", spaceID).Str("file", path).Err(err).Msg("import failed, skipping file")
			continue
		}
		imported++
	}

	log.Info().Int("imported", imported).Msg("import finished")
	return nil
}

func importFile(cmd *cobra.Command, path, filename, spaceID string, opts api.ImportOptions) error {
	ctx := cmd.Context()
	log := loggerFromContext(ctx)

	if err := ensureSpace(cmd, spaceID); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	result, err := GetClient().ImportObjects(ctx, spaceID, filename, f, opts)
	if err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("import reported %d error(s)", len(result.Errors))
	}

	log.Info().Str("space", spaceID).Int("objects", result.SuccessCount).Msg("imported saved objects")
	return nil
}

// ensureSpace creates the space when it does not exist yet
func ensureSpace(cmd *cobra.Command, spaceID string) error {
	ctx := cmd.Context()
	log := loggerFromContext(ctx)

	_, err := GetClient().GetSpace(ctx, spaceID)
	if err == nil {
		return nil
	}

	var notFound api.NotFoundError
	if !errors.As(err, &notFound) {
		return err
	}

	space := api.Space{
		ID:          spaceID,
		Name:        capitalize(spaceID),
		Description: fmt.Sprintf("Space for %s", spaceID),
		Color:       "#aabbcc",
	}
	if err := GetClient().CreateSpace(ctx, space); err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}

	log.Info().Str("space", spaceID).Msg("created space")
	return nil
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
