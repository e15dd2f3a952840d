package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaptinlin/jsona"
)

func newFormatCmd() *cobra.Command {
	opts := jsona.DefaultOptions()
	var noTrailingComma, noTrailingNewline bool

	cmd := &cobra.Command{
		Use:   "format [file]",
		Short: "Reformat a JSONA document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args)
			if err != nil {
				return fmt.Errorf("jsona format: %w", err)
			}

			if noTrailingComma {
				opts.TrailingComma = false
			}
			if noTrailingNewline {
				opts.TrailingNewline = false
			}

			out, err := jsona.Format(src, opts)
			if err != nil {
				return fmt.Errorf("jsona format: %w", err)
			}
			cmd.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.IndentString, "indent", opts.IndentString, "indentation string")
	cmd.Flags().BoolVar(&noTrailingComma, "no-trailing-comma", false, "omit the trailing comma on the last member of a multiline container")
	cmd.Flags().BoolVar(&noTrailingNewline, "no-trailing-newline", false, "omit the final newline")
	cmd.Flags().BoolVar(&opts.FormatKey, "format-key", opts.FormatKey, "normalize key quoting")
	cmd.Flags().BoolVar(&opts.CRLF, "crlf", opts.CRLF, "use CRLF line endings")
	cmd.Flags().IntVar(&opts.AllowedBlankLines, "allowed-blank-lines", opts.AllowedBlankLines, "maximum consecutive blank lines to preserve")
	cmd.Flags().IntVar(&opts.ColumnWidth, "column-width", opts.ColumnWidth, "preferred column width")
	return cmd
}
