// Package main serves the HR review surface: the pending queue, approve,
// reject, request-update, and the quarterly cap setting.
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
	"github.com/shopspring/decimal"
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
	if err := authz.Require(actor, models.RoleHR); err != nil {
		return httpx.Error(http.StatusForbidden, "hr role required")
	}

	id := req.PathParameters["id"]
	switch req.RouteKey {
	case "GET /hr/claims/pending":
		claims, err := a.Service.Pending(ctx)
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claims)

	case "PUT /hr/claims/{id}/approve":
		claim, err := a.Service.Approve(ctx, actor, id)
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claim)

	case "PUT /hr/claims/{id}/reject":
		comment, resp, ok := commentFrom(req.Body)
		if !ok {
			return resp, nil
		}
		claim, err := a.Service.Reject(ctx, actor, id, comment)
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claim)

	case "PUT /hr/claims/{id}/request-update":
		comment, resp, ok := commentFrom(req.Body)
		if !ok {
			return resp, nil
		}
		claim, err := a.Service.RequestUpdate(ctx, actor, id, comment)
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claim)

	case "PUT /hr/settings/quarter-cap":
		var body api.CapRequest
		if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
			return httpx.Error(http.StatusBadRequest, "invalid json")
		}
		amount, err := decimal.NewFromString(body.Amount)
		if err != nil {
			return httpx.Error(http.StatusBadRequest, "amount must be a number")
		}
		if err := a.Service.UpdateQuarterCap(ctx, actor, amount); err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, api.Message{Message: "quarterly cap updated"})
	}

	return httpx.Error(http.StatusNotFound, "no such route")
}

func commentFrom(body string) (string, events.APIGatewayV2HTTPResponse, bool) {
	var c api.CommentRequest
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		resp, _ := httpx.Error(http.StatusBadRequest, "invalid json")
		return "", resp, false
	}
	return c.Comment, events.APIGatewayV2HTTPResponse{}, true
}
