// Package drift compares the catalog with what cloud providers report live.
package drift

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/pkg/region"
)

// AWSProviderID is the catalog provider id for Amazon Web Services.
const AWSProviderID = "aws"

// EC2API defines the EC2 operations used by the drift check.
type EC2API interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// Report lists the differences between the catalog and the provider.
type Report struct {
	Provider string   `json:"provider" yaml:"provider"`
	Checked  int      `json:"checked" yaml:"checked"`
	Missing  []string `json:"missing" yaml:"missing"` // reported by the provider, absent from the catalog
	Unknown  []string `json:"unknown" yaml:"unknown"` // in the catalog, not reported by the provider
	OptIn    []string `json:"optIn" yaml:"optIn"`     // reported but not enabled for this account
}

// InSync reports whether nothing differs.
func (r Report) InSync() bool {
	return len(r.Missing) == 0 && len(r.Unknown) == 0
}

// NewEC2Client builds an EC2 client from the default credential chain.
func NewEC2Client(ctx context.Context, awsRegion string) (*ec2.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ec2.NewFromConfig(cfg), nil
}

// CheckAWS compares the commercial-partition AWS regions in snap with the
// regions EC2 lists for the account, including ones not opted in.
// Government and China regions live in separate partitions and are skipped.
func CheckAWS(ctx context.Context, api EC2API, snap *catalog.Snapshot) (Report, error) {
	out, err := api.DescribeRegions(ctx, &ec2.DescribeRegionsInput{AllRegions: aws.Bool(true)})
	if err != nil {
		return Report{}, fmt.Errorf("describe regions: %w", err)
	}

	live := make(map[string]bool, len(out.Regions))
	var optIn []string
	for _, r := range out.Regions {
		name := aws.ToString(r.RegionName)
		if name == "" {
			continue
		}
		live[name] = true
		if aws.ToString(r.OptInStatus) == "not-opted-in" {
			optIn = append(optIn, name)
		}
	}

	known := make(map[string]bool)
	for _, r := range snap.RegionsByProvider(AWSProviderID) {
		if r.RegionType == region.TypeGovernment || r.RegionType == region.TypeChina {
			continue
		}
		known[r.Code] = true
	}

	report := Report{
		Provider: AWSProviderID,
		Checked:  len(known),
		Missing:  difference(live, known),
		Unknown:  difference(known, live),
		OptIn:    sortedOrEmpty(optIn),
	}

	log.Info().
		Str("provider", AWSProviderID).
		Int("checked", report.Checked).
		Int("missing", len(report.Missing)).
		Int("unknown", len(report.Unknown)).
		Msg("drift check complete")

	return report, nil
}

// difference returns the sorted keys of a that are not in b.
func difference(a, b map[string]bool) []string {
	out := make([]string, 0)
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func sortedOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	sort.Strings(s)
	return s
}
