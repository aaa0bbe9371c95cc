package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/regiondex/internal/query"
	"github.com/yairfalse/regiondex/pkg/region"
)

var (
	errRegionNotFound   = errors.New("region not found")
	errProviderNotFound = errors.New("provider not found")
)

func (c *cli) queryCmds() []*cobra.Command {
	return []*cobra.Command{
		c.regionsCmd(),
		c.regionCmd(),
		c.providersCmd(),
		c.providerCmd(),
		c.nearbyCmd(),
		c.searchCmd(),
		c.compliantCmd(),
		c.sustainableCmd(),
		c.gpuCmd(),
		c.coverageCmd(),
		c.countriesCmd(),
		c.citiesCmd(),
		c.statsCmd(),
		c.infoCmd(),
	}
}

func (c *cli) regionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List regions matching a filter",
		Example: `  regiondex regions --provider aws,gcp
  regiondex regions --continent europe --compliance GDPR --limit 5`,
		Args: cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (0: no limit)")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}
		if err := checkLimit(limit); err != nil {
			return err
		}
		e, err := c.engine(cmd.Context())
		if err != nil {
			return err
		}
		return c.print(cmd, e.ListRegions(cmd.Context(), query.ListParams{Filter: criteria, Limit: limit}))
	}
	return cmd
}

func (c *cli) regionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "region <id>",
		Short:   "Show one region",
		Example: `  regiondex region aws-eu-central-1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			r, ok := e.GetRegion(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%w: %s", errRegionNotFound, args[0])
			}
			return c.print(cmd, r)
		},
	}
}

func (c *cli) providersCmd() *cobra.Command {
	var tiers []string
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List providers with their region counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			ts := make([]region.Tier, 0, len(tiers))
			for _, t := range tiers {
				ts = append(ts, region.Tier(t))
			}
			return c.print(cmd, e.ListProviders(cmd.Context(), ts))
		},
	}
	cmd.Flags().StringSliceVar(&tiers, "tier", nil, "Provider tiers (any of)")
	return cmd
}

func (c *cli) providerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provider <id>",
		Short: "Show one provider and its regions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			d, ok := e.GetProvider(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("%w: %s", errProviderNotFound, args[0])
			}
			return c.print(cmd, d)
		},
	}
}

func (c *cli) nearbyCmd() *cobra.Command {
	var (
		lat, lng    float64
		limit       int
		maxDistance float64
	)
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "Find the regions closest to a point",
		Example: `  regiondex nearby --lat 48.8566 --lng 2.3522 --limit 3
  regiondex nearby --lat 35.68 --lng 139.69 --max-distance 500 --provider aws`,
		Args: cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude in degrees")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude in degrees")
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum number of results (0: no limit)")
	cmd.Flags().Float64Var(&maxDistance, "max-distance", 0, "Maximum distance in km (inclusive)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if lat < -90 || lat > 90 {
			return fmt.Errorf("--lat must be between -90 and 90 (got %v)", lat)
		}
		if lng < -180 || lng > 180 {
			return fmt.Errorf("--lng must be between -180 and 180 (got %v)", lng)
		}
		if err := checkLimit(limit); err != nil {
			return err
		}
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}

		p := query.NearbyParams{Latitude: lat, Longitude: lng, Limit: limit, Filter: criteria}
		if cmd.Flags().Changed("max-distance") {
			if maxDistance < 0 {
				return fmt.Errorf("--max-distance must not be negative (got %v)", maxDistance)
			}
			p.MaxDistanceKm = &maxDistance
		}

		e, err := c.engine(cmd.Context())
		if err != nil {
			return err
		}
		return c.print(cmd, e.Nearby(cmd.Context(), p))
	}
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		providers []string
		limit     int
	)
	cmd := &cobra.Command{
		Use:     "search <text>",
		Short:   "Search regions by name, code, city, country or provider",
		Example: `  regiondex search frankfurt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkLimit(limit); err != nil {
				return err
			}
			e, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd, e.Search(cmd.Context(), query.SearchParams{
				Query:     args[0],
				Providers: providers,
				Limit:     limit,
			}))
		},
	}
	cmd.Flags().StringSliceVar(&providers, "provider", nil, "Provider ids (any of)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (0: no limit)")
	return cmd
}

func (c *cli) compliantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compliant <certification>...",
		Short:   "Find regions holding every listed certification",
		Example: `  regiondex compliant HIPAA SOC2`,
		Args:    cobra.MinimumNArgs(1),
	}
	ff := addFilterFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}
		e, err := c.engine(cmd.Context())
		if err != nil {
			return err
		}
		return c.print(cmd, e.Compliant(cmd.Context(), query.ComplianceParams{Certifications: args, Filter: criteria}))
	}
	return cmd
}

func (c *cli) sustainableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sustainable",
		Short: "Find carbon-neutral regions",
		Args:  cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}
		e, err := c.engine(cmd.Context())
		if err != nil {
			return err
		}
		return c.print(cmd, e.Sustainable(cmd.Context(), query.SustainabilityParams{Filter: criteria}))
	}
	return cmd
}

func (c *cli) gpuCmd() *cobra.Command {
	var gpuType string
	cmd := &cobra.Command{
		Use:     "gpu",
		Short:   "Find GPU-capable regions",
		Example: `  regiondex gpu --gpu-type H100 --continent europe`,
		Args:    cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.Flags().StringVar(&gpuType, "gpu-type", "", "GPU model substring, case-insensitive")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}
		e, err := c.engine(cmd.Context())
		if err != nil {
			return err
		}
		return c.print(cmd, e.GPU(cmd.Context(), query.GPUParams{GPUType: gpuType, Filter: criteria}))
	}
	return cmd
}

func (c *cli) coverageCmd() *cobra.Command {
	var country, continent string
	cmd := &cobra.Command{
		Use:     "coverage",
		Short:   "Count regions per provider in a country or continent",
		Example: `  regiondex coverage --country DE`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cont := region.Continent(continent)
			if continent != "" && !cont.Valid() {
				return fmt.Errorf("unknown continent %q", continent)
			}
			e, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd, e.Coverage(cmd.Context(), query.CoverageParams{CountryCode: country, Continent: cont}))
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "ISO country code")
	cmd.Flags().StringVar(&continent, "continent", "", "Continent")
	return cmd
}

func (c *cli) countriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "countries",
		Short: "Count regions per country",
		Args:  cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}
		e, err := c.engine(cmd.Context())
		if err != nil {
			return err
		}
		return c.print(cmd, e.Countries(cmd.Context(), criteria))
	}
	return cmd
}

func (c *cli) citiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cities",
		Short: "Count regions per city",
		Args:  cobra.NoArgs,
	}
	ff := addFilterFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		criteria, err := ff.criteria()
		if err != nil {
			return err
		}
		e, err := c.engine(cmd.Context())
		if err != nil {
			return err
		}
		return c.print(cmd, e.Cities(cmd.Context(), criteria))
	}
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd, e.Stats(cmd.Context()))
		},
	}
}

func (c *cli) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show where the catalog came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.engine(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd, e.Info(cmd.Context()))
		},
	}
}

func checkLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative (got %d)", limit)
	}
	return nil
}
