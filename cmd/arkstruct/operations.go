package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kuechlerm/arkstruct/catalog"
)

type operationInfo struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Request  string `json:"request"`
	Response string `json:"response"`
}

func newOperationsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List the operations of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []operationInfo
			for _, op := range catalog.Operations() {
				infos = append(infos, operationInfo{
					Name:     op.Name,
					Path:     op.Path,
					Request:  op.Request.String(),
					Response: op.Response.String(),
				})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPATH\tREQUEST\tRESPONSE")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Name, info.Path, info.Request, info.Response)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
