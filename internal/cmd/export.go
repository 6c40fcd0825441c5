package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/api"
	"github.com/salmonumbrella/kibana-spaces-cli/internal/ndjson"
)

var (
	exportSpaces  []string
	exportTypes   []string
	exportNoSplit bool
)

var exportCmd = &cobra.Command{
	Use:   "export <export_dir>",
	Short: "Export saved objects from spaces",
	Long: `Export saved objects from Kibana spaces.

Writes the full space directory to <export_dir>/spaces_details.json, then
for each selected space exports its saved objects to
<export_dir>/<space_id>.json (raw NDJSON, exactly as Kibana returned it)
and splits that file into one pretty-printed JSON file per object under
<export_dir>/<space_id>/.

With no --spaces selection every space is exported. Any unknown space ID
aborts the whole run before anything is exported.

A failed export for one space (for example a 500 from Kibana) is logged
and skipped; remaining spaces are still processed.

Examples:
  kbspaces export ./backup
  kbspaces export ./backup --spaces default --spaces marketing
  kbspaces export ./backup --types dashboard --types visualization
  kbspaces export ./backup --no-split`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportSpaces, "spaces", nil, "Space IDs to export (default: all spaces)")
	exportCmd.Flags().StringSliceVar(&exportTypes, "types", nil, "Saved-object types to export (default: all types)")
	exportCmd.Flags().BoolVar(&exportNoSplit, "no-split", false, "Keep only the raw NDJSON, skip per-document splitting")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := loggerFromContext(ctx)
	exportDir := args[0]

	types := exportTypes
	if len(types) == 0 {
		cfg, err := loadConfigFromFlag()
		if err == nil && len(cfg.ExportTypes) > 0 {
			types = cfg.ExportTypes
		}
	}

	known, err := GetClient().ListSpaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to list spaces: %w", err)
	}

	selected, err := api.SelectSpaces(exportSpaces, known)
	if err != nil {
		var invalid api.InvalidSpacesError
		if errors.As(err, &invalid) {
			for _, id := range invalid.IDs {
				log.Error().Str("space", id).Msg("requested space does not exist")
			}
		}
		return err
	}

	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := writeSpaceDetails(filepath.Join(exportDir, "spaces_details.json"), known); err != nil {
		return err
	}

	exported := 0
	for _, space := range selected {
		if err := exportSpace(cmd, exportDir, space, types); err != nil {
			// Partial failure policy: log and move on to the next space
			log.Error().Str("space", space.ID).Err(err).Msg("export failed, skipping space")
			continue
		}
		exported++
	}

	log.Info().Int("exported", exported).Int("selected", len(selected)).Msg("export finished")
	return nil
}

func exportSpace(cmd *cobra.Command, exportDir string, space api.Space, types []string) error {
	ctx := cmd.Context()
	log := loggerFromContext(ctx)

	blob, err := GetClient().ExportObjects(ctx, space.ID, types)
	if err != nil {
		return err
	}

	exportPath := filepath.Join(exportDir, space.ID+".json")
	if err := os.WriteFile(exportPath, blob, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	log.Info().Str("space", space.ID).Str("file", exportPath).Msg("exported saved objects")

	if exportNoSplit {
		return nil
	}

	splitDir := filepath.Join(exportDir, space.ID)
	written, err := ndjson.SplitFile(exportPath, splitDir, log)
	if err != nil {
		return err
	}
	log.Info().Str("space", space.ID).Int("documents", written).Str("dir", splitDir).Msg("split export")
	return nil
}

// writeSpaceDetails writes the full space directory as pretty-printed JSON
func writeSpaceDetails(path string, spaces []api.Space) error {
	data, err := json.MarshalIndent(spaces, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode space details: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write space details: %w", err)
	}
	return nil
}
