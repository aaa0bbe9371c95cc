package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yairfalse/regiondex/internal/drift"
)

func (c *cli) driftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Compare the catalog with what providers report",
	}
	cmd.AddCommand(c.driftAWSCmd())
	return cmd
}

func (c *cli) driftAWSCmd() *cobra.Command {
	var awsRegion string
	cmd := &cobra.Command{
		Use:   "aws",
		Short: "Compare catalog AWS regions with ec2:DescribeRegions",
		Long: `Call ec2:DescribeRegions with the default AWS credential chain and
report region codes that AWS lists but the catalog lacks, and catalog
codes AWS does not know. Read-only.`,
		Example: `  regiondex drift aws --region us-east-1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := c.store(ctx)
			if err != nil {
				return err
			}
			client, err := drift.NewEC2Client(ctx, awsRegion)
			if err != nil {
				return err
			}
			report, err := drift.CheckAWS(ctx, client, store.Current())
			if err != nil {
				return err
			}
			if !report.InSync() {
				log.Warn().
					Int("missing", len(report.Missing)).
					Int("unknown", len(report.Unknown)).
					Msg("catalog drifted from AWS")
			}
			return c.print(cmd, report)
		},
	}
	cmd.Flags().StringVar(&awsRegion, "region", "us-east-1", "AWS region used for the API call")
	return cmd
}
