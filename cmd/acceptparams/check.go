package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	acceptparams "github.com/nateware/accept-params"
	"github.com/nateware/accept-params/schemafile"
)

// errCheckFailed is returned after a rejection has been reported.
var errCheckFailed = errors.New("params rejected")

func newCheckCmd(a *app) *cobra.Command {
	var schemaPath string
	var quiet bool
	cmd := &cobra.Command{
		Use:   "check [params-file]",
		Short: "Validate a params document against a schema file",
		Long:  `Validates a JSON or YAML params document against a schema file and prints the coerced params, or the first error.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := schemafile.Load(schemaPath)
			if err != nil {
				return err
			}
			params, err := schemafile.LoadParams(args[0])
			if err != nil {
				return err
			}

			acceptor := acceptparams.NewAcceptor(acceptparams.WithLogger(a.logger))
			out := cmd.OutOrStdout()
			if err := doc.Accept(cmd.Context(), acceptor, params); err != nil {
				bad := color.New(color.FgRed, color.Bold)
				bad.Fprint(out, "FAIL ")
				if e, ok := acceptparams.AsError(err); ok {
					fmt.Fprintf(out, "%s %s\n", color.YellowString(string(e.Code)), e.Error())
				} else {
					fmt.Fprintln(out, err)
				}
				return errCheckFailed
			}

			color.New(color.FgGreen, color.Bold).Fprintln(out, "OK")
			if quiet {
				return nil
			}
			b, err := json.MarshalIndent(params, "", "  ")
			if err != nil {
				return fmt.Errorf("encode params: %w", err)
			}
			fmt.Fprintln(out, string(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema file (YAML or JSON)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only print the result line")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}
