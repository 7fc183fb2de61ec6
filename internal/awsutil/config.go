// Package awsutil provides utilities for loading AWS configuration.
package awsutil

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
)

// Load loads the AWS configuration. When AWS_ENDPOINT_URL is set (e.g.
// http://localstack:4566) the returned endpoint should be applied as each
// client's BaseEndpoint; S3 clients should also switch to path style.
func Load(ctx context.Context, region string) (aws.Config, string, error) {
	cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
	return cfg, os.Getenv("AWS_ENDPOINT_URL"), err
}
