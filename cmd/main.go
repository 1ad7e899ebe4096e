package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/eventhive/event-registration/api"
	"github.com/eventhive/event-registration/dynamo"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is only a convenience for local runs, missing file is fine.
	_ = godotenv.Load()

	settings := getServerSettingsFromEnv()

	env, err := api.ParseEnvironment(settings.Env)
	if err != nil {
		slog.Error("Invalid ENV value", "error", err)
		os.Exit(1)
	}

	logger := newLogger(env)
	ctx := context.Background()

	shutdownTracing, err := initTracing(ctx)
	if err != nil {
		logger.Error("Failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(ctx)

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := newDynamoClient(awsCfg, settings, env)
	db := dynamo.NewDB(dynamoClient, settings.TableName)

	apiKey, err := getAPIKey(ctx, awsCfg, settings, env)
	if err != nil {
		logger.Error("Failed to resolve API key", "error", err)
		os.Exit(1)
	}

	eventAPI := api.NewAPI(db, logger, api.Config{
		Env:    env,
		APIKey: apiKey,
	}, prometheus.DefaultRegisterer)

	s := &http.Server{
		Handler: eventAPI.Handler(),
		Addr:    net.JoinHostPort(settings.Host, settings.Port),
	}

	logger.Info("Starting server", "addr", s.Addr, "env", env)
	if err := s.ListenAndServe(); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(env api.Environment) *slog.Logger {
	if env == api.PROD {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newDynamoClient(awsCfg aws.Config, settings ServerSettings, env api.Environment) *dynamodb.Client {
	if env == api.LOCAL && settings.DynamoEndpoint != "" {
		awsCfg.Credentials = credentials.NewStaticCredentialsProvider("local", "local", "local")
		return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = &settings.DynamoEndpoint
		})
	}

	return dynamodb.NewFromConfig(awsCfg)
}

type ServerSettings struct {
	Host           string
	Port           string
	Env            string
	TableName      string
	DynamoEndpoint string
	APIKey         string
	APIKeySSMParam string
}

func getServerSettingsFromEnv() ServerSettings {
	return ServerSettings{
		Host:           getEnvOrDefault("HOST", "0.0.0.0"),
		Port:           getEnvOrDefault("PORT", "8080"),
		Env:            getEnvOrDefault("ENV", string(api.LOCAL)),
		TableName:      getEnvOrDefault("TABLE_NAME", "EventRegistration"),
		DynamoEndpoint: getEnvOrDefault("DYNAMO_ENDPOINT", ""),
		APIKey:         getEnvOrDefault("API_KEY", ""),
		APIKeySSMParam: getEnvOrDefault("API_KEY_SSM_PARAM", ""),
	}
}

func getEnvOrDefault(key string, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return defaultVal
}
