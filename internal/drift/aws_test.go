package drift

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/catalog/catalogtest"
	"github.com/yairfalse/regiondex/pkg/region"
)

// mockEC2Client implements EC2API for testing.
type mockEC2Client struct {
	describeRegionsFunc func(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

func (m *mockEC2Client) DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	if m.describeRegionsFunc != nil {
		return m.describeRegionsFunc(ctx, params, optFns...)
	}
	return &ec2.DescribeRegionsOutput{}, nil
}

func liveRegions(names map[string]string) *mockEC2Client {
	return &mockEC2Client{
		describeRegionsFunc: func(_ context.Context, params *ec2.DescribeRegionsInput, _ ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
			if !aws.ToBool(params.AllRegions) {
				return nil, errors.New("expected AllRegions")
			}
			out := &ec2.DescribeRegionsOutput{}
			for name, status := range names {
				out.Regions = append(out.Regions, types.Region{
					RegionName:  aws.String(name),
					OptInStatus: aws.String(status),
				})
			}
			return out, nil
		},
	}
}

func TestCheckAWS_InSync(t *testing.T) {
	api := liveRegions(map[string]string{
		"us-east-1": "opt-in-not-required",
		"us-west-2": "opt-in-not-required",
	})

	report, err := CheckAWS(context.Background(), api, catalogtest.Snapshot())
	require.NoError(t, err)

	assert.True(t, report.InSync())
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Missing)
	assert.Empty(t, report.Unknown)
	assert.Empty(t, report.OptIn)
}

func TestCheckAWS_ReportsBothDirectionsSorted(t *testing.T) {
	api := liveRegions(map[string]string{
		"us-east-1":    "opt-in-not-required",
		"eu-west-1":    "opt-in-not-required",
		"ap-south-2":   "not-opted-in",
		"af-south-1":   "not-opted-in",
		"eu-central-1": "opt-in-not-required",
	})

	report, err := CheckAWS(context.Background(), api, catalogtest.Snapshot())
	require.NoError(t, err)

	assert.False(t, report.InSync())
	assert.Equal(t, []string{"af-south-1", "ap-south-2", "eu-central-1", "eu-west-1"}, report.Missing)
	assert.Equal(t, []string{"us-west-2"}, report.Unknown)
	assert.Equal(t, []string{"af-south-1", "ap-south-2"}, report.OptIn)
}

func TestCheckAWS_SkipsOtherPartitions(t *testing.T) {
	ds := catalogtest.Dataset()
	ds.Regions = append(ds.Regions,
		region.Region{ID: "aws-us-gov-west-1", Provider: "aws", Code: "us-gov-west-1", RegionType: region.TypeGovernment},
		region.Region{ID: "aws-cn-north-1", Provider: "aws", Code: "cn-north-1", RegionType: region.TypeChina},
	)
	api := liveRegions(map[string]string{"us-east-1": "", "us-west-2": ""})

	report, err := CheckAWS(context.Background(), api, catalog.NewSnapshot(ds))
	require.NoError(t, err)

	assert.True(t, report.InSync())
	assert.Equal(t, 2, report.Checked)
}

func TestCheckAWS_APIError(t *testing.T) {
	api := &mockEC2Client{
		describeRegionsFunc: func(context.Context, *ec2.DescribeRegionsInput, ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
			return nil, errors.New("UnauthorizedOperation")
		},
	}

	_, err := CheckAWS(context.Background(), api, catalogtest.Snapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "describe regions")
}
