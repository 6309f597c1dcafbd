package main

import (
	"context"
	"log"

	"github.com/Mohamadaloreibi/matchai-talent-finder/app"
	"github.com/Mohamadaloreibi/matchai-talent-finder/app/config"
	"github.com/Mohamadaloreibi/matchai-talent-finder/logger"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Logs.JSON, cfg.Logs.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	app.SetLogger(zlog)

	app.MustInitDB()
	app.MustInitAssistant()

	router, err := app.NewRouter()
	if err != nil {
		log.Fatalf("failed to initialize router: %v", err)
	}

	ginLambda = ginadapter.New(router)
}

// Handler is the Lambda entrypoint for API Gateway proxy integration.
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
