package config

import (
	"context"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// OverlayFromSSM fetches parameters under the given path prefix from AWS SSM
// Parameter Store and merges them into the config map. Parameter names are
// uppercased with the prefix stripped, so "/agenthub/jwt_secret" becomes
// "JWT_SECRET". Environment values take precedence over SSM values.
func OverlayFromSSM(ctx context.Context, c map[string]string, prefix string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return err
	}

	client := ssm.NewFromConfig(awsCfg)
	withDecryption := true

	var nextToken *string
	for {
		out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           &prefix,
			WithDecryption: &withDecryption,
			NextToken:      nextToken,
		})
		if err != nil {
			return err
		}

		for _, p := range out.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			key := strings.ToUpper(strings.TrimPrefix(strings.TrimPrefix(*p.Name, prefix), "/"))
			if key == "" {
				continue
			}
			if _, exists := c[key]; !exists {
				c[key] = *p.Value
			}
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	log.Info().Str("prefix", prefix).Msg("Loaded configuration overlay from SSM")
	return nil
}
