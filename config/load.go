package config

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Load reads .env files (if present) into the environment, snapshots the
// environment and, when AWS_SSM_PARAMETER_PATH is set, fills in keys that
// are still missing from SSM Parameter Store.
func Load(ctx context.Context, envFiles ...string) (map[string]string, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Warn().Err(err).Msg("no .env file loaded")
	}

	c := New()

	parameterPath := GetString(c, "AWS_SSM_PARAMETER_PATH", "")
	if parameterPath == "" {
		return c, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	if err := OverlaySSM(ctx, ssm.NewFromConfig(awsCfg), parameterPath, c); err != nil {
		return nil, err
	}
	return c, nil
}

// OverlaySSM copies every parameter under parameterPath into c, keyed by the
// last path segment. Keys already present in c are kept as they are.
func OverlaySSM(ctx context.Context, client ssm.GetParametersByPathAPIClient, parameterPath string, c map[string]string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("reading ssm parameters under %s: %w", parameterPath, err)
		}
		for _, p := range page.Parameters {
			key := path.Base(aws.ToString(p.Name))
			if _, exists := c[key]; exists {
				continue
			}
			c[key] = aws.ToString(p.Value)
			loaded++
		}
	}

	log.Info().Str("path", parameterPath).Int("loaded", loaded).Msg("ssm parameters loaded")
	return nil
}
