package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newOperationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "list the operation catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogue := a.processor().Catalogue()
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(catalogue)
			case "text":
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tPARAMS\tDESCRIPTION")
				for _, op := range catalogue {
					params := make([]string, 0, len(op.Params))
					for _, p := range op.Params {
						params = append(params, p.Name+"="+strconv.FormatFloat(p.Default, 'g', -1, 64))
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", op.Name, strings.Join(params, ","), op.Description)
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}
	cmd.Flags().StringP("format", "f", "text", "output format (text|json)")
	return cmd
}
