package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nateware/accept-params/schemafile"
)

func newSchemaCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "schema [schema-file]",
		Short: "Print a schema file as JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schemafile.Load(args[0])
			if err != nil {
				return err
			}
			s, err := doc.Rules().JSONSchema()
			if err != nil {
				return err
			}

			var b []byte
			if asYAML {
				b, err = yaml.Marshal(s)
			} else {
				b, err = json.MarshalIndent(s, "", "  ")
			}
			if err != nil {
				return fmt.Errorf("encode schema: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print YAML instead of JSON")
	return cmd
}
