// Package main files new benefit claims for employees.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/agilehr/benefit-claims-portal/internal/api"
	"github.com/agilehr/benefit-claims-portal/internal/app"
	"github.com/agilehr/benefit-claims-portal/internal/authz"
	"github.com/agilehr/benefit-claims-portal/internal/httpx"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
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

// handle processes POST /claims.
func handle(ctx context.Context, a *app.App, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	actor, err := authz.FromRequest(req, a.Env.DevBypassAuth)
	if err != nil {
		return httpx.Error(http.StatusUnauthorized, "missing user")
	}
	if err := authz.Require(actor, models.RoleEmployee); err != nil {
		return httpx.Error(http.StatusForbidden, "employee role required")
	}

	var body api.SubmitClaimRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return httpx.Error(http.StatusBadRequest, "invalid json")
	}
	in, err := body.ToInput()
	if err != nil {
		return httpx.ErrorFrom(err)
	}

	claim, err := a.Service.Submit(ctx, actor, in)
	if err != nil {
		a.Logger.Info("submit rejected", zap.String("employee", actor.Sub), zap.Error(err))
		return httpx.ErrorFrom(err)
	}
	return httpx.JSON(http.StatusCreated, claim)
}
