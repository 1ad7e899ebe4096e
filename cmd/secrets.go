package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/eventhive/event-registration/api"
)

// getAPIKey resolves the shared API key. In PROD the key lives in SSM
// Parameter Store; locally it comes straight from the environment.
func getAPIKey(ctx context.Context, awsCfg aws.Config, settings ServerSettings, env api.Environment) (string, error) {
	if env == api.PROD {
		if settings.APIKeySSMParam == "" {
			return "", errors.New("API_KEY_SSM_PARAM must be set in PROD")
		}
		return fetchSSMParameter(ctx, awsCfg, settings.APIKeySSMParam)
	}

	if settings.APIKey == "" {
		return "", errors.New("API_KEY must be set")
	}
	return settings.APIKey, nil
}

func fetchSSMParameter(ctx context.Context, awsCfg aws.Config, name string) (string, error) {
	client := ssm.NewFromConfig(awsCfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch SSM parameter %q: %w", name, err)
	}

	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("SSM parameter %q has no value", name)
	}

	return *out.Parameter.Value, nil
}
