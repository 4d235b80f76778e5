package main

import (
	"github.com/spf13/cobra"

	"github.com/kuechlerm/arkstruct/generate"
)

func newGenerateCmd(a *app) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate arktype types and RPC-Client from Go structs",
		Long: `Generate arktype types and RPC-Client from Go structs.

Example:

	arkstruct generate -i /path/to/folder -o output.ts`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate.New(a.log).Generate(in, out)
		},
	}
	cmd.Flags().StringVarP(&in, "input", "i", "", "Folder with Go files containing structs")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output TypeScript file for generated types")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
