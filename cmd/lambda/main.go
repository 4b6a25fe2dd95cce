package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/app"
	"github.com/boirefacile/backend-go/internal/config"
	"github.com/boirefacile/backend-go/internal/lambdaproxy"
)

var (
	handler     *lambdaproxy.Handler
	setupOnce   sync.Once
	initHandler = defaultInitHandler
)

func defaultInitHandler(ctx context.Context) (*lambdaproxy.Handler, error) {
	cfg := config.LoadFromEnv()
	cfg.InitializeLogging()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return lambdaproxy.NewHandler(application.Handler), nil
}

func handleRequest(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if handler == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "Handler not initialized"}`,
		}, fmt.Errorf("handler not initialized")
	}
	return handler.HandleRequest(ctx, event)
}

func InitializeService() error {
	var initError error
	setupOnce.Do(func() {
		log.Debug().Msg("Initializing bar crawl service...")
		var err error
		handler, err = initHandler(context.Background())
		if err != nil {
			initError = fmt.Errorf("failed to initialize handler: %w", err)
			log.Error().Err(err).Msg("Failed to initialize handler")
			return
		}
		log.Debug().Msg("Bar crawl service initialized successfully")
	})
	return initError
}

func main() {
	if err := InitializeService(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	lambda.Start(handleRequest)
}
