package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kaptinlin/jsona"
)

func newParseCmd() *cobra.Command {
	var showDOM bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a JSONA document and report syntax/DOM errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args)
			if err != nil {
				return fmt.Errorf("jsona parse: %w", err)
			}

			p := jsona.ParseSource(src)
			dom := p.Dom()
			domErrs := dom.Validate()

			out := struct {
				SyntaxErrors []jsona.SyntaxError `json:"syntaxErrors,omitempty"`
				DomErrors    []jsona.Error       `json:"domErrors,omitempty"`
				Value        any                 `json:"value,omitempty"`
			}{
				SyntaxErrors: p.Errors,
				DomErrors:    domErrs,
			}

			if showDOM {
				plain, err := dom.ToPlainJSON()
				if err != nil {
					return fmt.Errorf("jsona parse: %w", err)
				}
				out.Value = plain
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("jsona parse: %w", err)
			}
			cmd.Println(string(data))

			if len(p.Errors) > 0 || len(domErrs) > 0 {
				return fmt.Errorf("jsona parse: %d syntax error(s), %d DOM error(s)", len(p.Errors), len(domErrs))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDOM, "value", false, "include the document's plain-JSON projection in the output")
	return cmd
}
