package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"disviz/internal/config"
	"disviz/internal/dump"
)

var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Generate JSON schema for configuration",
	Long:   "Generate JSON schema for the disviz configuration, or with --input for analyzer dumps",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetBool("input")

		reflector := new(jsonschema.Reflector)
		var schema *jsonschema.Schema
		if input {
			schema = reflector.Reflect(&dump.FunctionRecord{})
		} else {
			schema = reflector.Reflect(&config.Config{})
		}
		bts, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(bts))
		return nil
	},
}

func init() {
	schemaCmd.Flags().Bool("input", false, "Schema of the analyzer dump instead of the config")
}
