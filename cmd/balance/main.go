// Package main reports the caller's remaining annual and quarterly allowance.
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/agilehr/benefit-claims-portal/internal/app"
	"github.com/agilehr/benefit-claims-portal/internal/authz"
	"github.com/agilehr/benefit-claims-portal/internal/httpx"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	a, err := app.Bootstrap(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, a, req)
	})
}

// handle processes GET /claims/balance.
func handle(ctx context.Context, a *app.App, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	actor, err := authz.FromRequest(req, a.Env.DevBypassAuth)
	if err != nil {
		return httpx.Error(http.StatusUnauthorized, "missing user")
	}
	if err := authz.Require(actor, models.RoleEmployee); err != nil {
		return httpx.Error(http.StatusForbidden, "employee role required")
	}

	bal, err := a.Service.BalanceFor(ctx, actor)
	if err != nil {
		return httpx.ErrorFrom(err)
	}
	return httpx.JSON(http.StatusOK, bal)
}
