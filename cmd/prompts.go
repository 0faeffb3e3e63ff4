package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"floral-studio-server/modules/floral"
)

var promptsJSON bool

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Print the four prompts for the given parameters (no API call)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := paramFlags.Validate(); err != nil {
			return err
		}
		plan := floral.ComposePrompts(paramFlags.ToRequest(floral.ReferenceImage{}))

		out := cmd.OutOrStdout()
		if promptsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}
		for i, p := range plan {
			fmt.Fprintf(out, "[%d] %s\n\n", i+1, p)
		}
		return nil
	},
}

func init() {
	addParamFlags(promptsCmd)
	promptsCmd.Flags().BoolVar(&promptsJSON, "json", false, "print as a JSON array")
}
