package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaptinlin/jsona"
	"github.com/kaptinlin/jsona/schema"
)

func newValidateCmd() *cobra.Command {
	var schemaPath string
	var preferOptional bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a JSONA document against an annotated JSONA schema document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schemaPath == "" {
				return fmt.Errorf("jsona validate: --schema is required")
			}

			schemaSrc, err := os.ReadFile(schemaPath)
			if err != nil {
				return fmt.Errorf("jsona validate: reading schema: %w", err)
			}
			schemaDom := jsona.ParseSource(string(schemaSrc)).Dom()

			sch, err := schema.FromNode(schemaDom, schema.CompileOptions{PreferOptional: preferOptional})
			if err != nil {
				return fmt.Errorf("jsona validate: compiling schema: %w", err)
			}

			src, err := readInput(args)
			if err != nil {
				return fmt.Errorf("jsona validate: %w", err)
			}
			dataDom := jsona.ParseSource(src).Dom()

			errs, err := schema.NewValidator(sch).Validate(dataDom)
			if err != nil {
				return fmt.Errorf("jsona validate: %w", err)
			}

			if len(errs) == 0 {
				cmd.Println("valid")
				return nil
			}

			for _, e := range errs {
				cmd.Println(e.Error())
			}
			return fmt.Errorf("jsona validate: %d error(s)", len(errs))
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to the annotated JSONA schema document")
	cmd.Flags().BoolVar(&preferOptional, "prefer-optional", false, "treat object properties as optional unless annotated @required")
	return cmd
}
