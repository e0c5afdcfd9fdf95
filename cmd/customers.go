package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/adsmcp/internal/ads"
)

const (
	outputJSON = "json"
	outputText = "text"
)

func newCustomersCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List accessible Google Ads customers",
		Long: `List the Google Ads customers the configured credentials can access
directly.

Output formats:
  json - the same document the REST API and MCP tool return (default)
  text - one customer per line with the ID in the 123-456-7890 form`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputJSON && output != outputText {
				return fmt.Errorf("unsupported output format: %s (supported: json, text)", output)
			}

			logger := newLogger()
			cfg, err := loadConfig("")
			if err != nil {
				return err
			}
			service, _, err := newAdsService(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}

			result, err := service.ListAccessibleCustomers(cmd.Context())
			if err != nil {
				return err
			}
			if output == outputText {
				return printCustomers(cmd.OutOrStdout(), result)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputJSON, "Output format: json or text")
	return cmd
}

func printCustomers(w io.Writer, result *ads.CustomersResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CUSTOMER ID\tRESOURCE NAME")
	for _, c := range result.AccessibleCustomers {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", ads.FormatCustomerID(c.CustomerID), c.ResourceName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d customer(s)\n", result.TotalCount)
	return err
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
