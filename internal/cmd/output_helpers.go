package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/kibana-spaces-cli/internal/output"
)

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

// printStructured writes data to the command's stdout in the configured
// structured format, applying any --query filter from the context.
func printStructured(cmd *cobra.Command, data interface{}) error {
	ctx := cmd.Context()
	printer := output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat())
	return printer.Print(ctx, data)
}
