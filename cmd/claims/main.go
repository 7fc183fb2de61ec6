// Package main serves an employee's own claims: list, fetch, and edit.
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

func handle(ctx context.Context, a *app.App, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	actor, err := authz.FromRequest(req, a.Env.DevBypassAuth)
	if err != nil {
		return httpx.Error(http.StatusUnauthorized, "missing user")
	}
	if err := authz.Require(actor, models.RoleEmployee); err != nil {
		return httpx.Error(http.StatusForbidden, "employee role required")
	}

	switch req.RouteKey {
	case "GET /claims":
		claims, err := a.Service.ListOwn(ctx, actor)
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claims)

	case "GET /claims/{id}":
		claim, err := a.Service.GetOwned(ctx, actor, req.PathParameters["id"])
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claim)

	case "PUT /claims/{id}":
		var body api.EditClaimRequest
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return httpx.Error(http.StatusBadRequest, "invalid json")
		}
		in, err := body.ToInput()
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		claim, err := a.Service.Edit(ctx, actor, req.PathParameters["id"], in)
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claim)
	}

	return httpx.Error(http.StatusNotFound, "no such route")
}
