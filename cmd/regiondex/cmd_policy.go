package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yairfalse/regiondex/internal/policy"
	"github.com/yairfalse/regiondex/internal/query"
)

func (c *cli) policyCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "List regions admitted by a rego policy",
		Long: `Evaluate a rego module against every region matching the filter.

The module must define data.regiondex.allow; each region is passed as
input. Regions for which allow is undefined are treated as denied.
Without --file the policy path from the config file is used.`,
		Example: `  regiondex policy --file eu-only.rego
  regiondex policy --file eu-only.rego --provider aws,gcp`,
		Args: cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to rego module")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if file == "" {
			file = c.cfg.Policy.Path
		}
		if file == "" {
			return errors.New("no policy: pass --file or set policy.path in the config")
		}
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pol, err := policy.LoadFile(ctx, file, c.logger)
		if err != nil {
			return err
		}
		e, err := c.engine(ctx)
		if err != nil {
			return err
		}

		allowed, err := pol.Allowed(ctx, e.ListRegions(ctx, query.ListParams{Filter: criteria}))
		if err != nil {
			return err
		}
		return c.print(cmd, allowed)
	}
	return cmd
}
