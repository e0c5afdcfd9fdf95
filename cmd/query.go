package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	var (
		customerID    string
		query         string
		attributes    []string
		normalizeMode string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a GAQL query",
		Long: `Run a GAQL query for a customer and print one normalized row per result
as JSON.

Rows are keyed by --attributes when given, otherwise by the fields of the
response field mask or the SELECT list.

Example:
  adsmcp query --customer-id 123-456-7890 \
    --query "SELECT campaign.id, campaign.name FROM campaign LIMIT 10"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("--query must not be empty")
			}

			logger := newLogger()
			cfg, err := loadConfig(normalizeMode)
			if err != nil {
				return err
			}
			service, _, err := newAdsService(cmd.Context(), cfg, logger, nil)
			if err != nil {
				return err
			}

			resp, err := service.Search(cmd.Context(), customerID, query, attributes)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVar(&customerID, "customer-id", "", "Google Ads customer ID, with or without dashes")
	cmd.Flags().StringVar(&query, "query", "", "GAQL query")
	cmd.Flags().StringSliceVar(&attributes, "attributes", nil, "Attribute paths to key rows by (comma separated)")
	cmd.Flags().StringVar(&normalizeMode, "normalize-mode", "", "Row normalization mode: deep or shallow")
	_ = cmd.MarkFlagRequired("customer-id")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}
