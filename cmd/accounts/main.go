// Package main serves the Accounts surface: the approved queue, payment
// processing, and paid-claim export.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"log"
	"net/http"
	"time"

	"github.com/agilehr/benefit-claims-portal/internal/app"
	"github.com/agilehr/benefit-claims-portal/internal/authz"
	"github.com/agilehr/benefit-claims-portal/internal/httpx"
	"github.com/agilehr/benefit-claims-portal/internal/models"
	"github.com/agilehr/benefit-claims-portal/internal/validate"

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
	if err := authz.Require(actor, models.RoleAccounts); err != nil {
		return httpx.Error(http.StatusForbidden, "accounts role required")
	}

	switch req.RouteKey {
	case "GET /accounts/claims/approved":
		claims, err := a.Service.ApprovedClaims(ctx)
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claims)

	case "PUT /accounts/claims/{id}/pay":
		claim, err := a.Service.MarkPaid(ctx, actor, req.PathParameters["id"])
		if err != nil {
			return httpx.ErrorFrom(err)
		}
		return httpx.JSON(http.StatusOK, claim)

	case "GET /accounts/export/{format}":
		return export(ctx, a, req.PathParameters["format"])
	}

	return httpx.Error(http.StatusNotFound, "no such route")
}

func export(ctx context.Context, a *app.App, format string) (events.APIGatewayV2HTTPResponse, error) {
	claims, err := a.Service.PaidClaims(ctx)
	if err != nil {
		return httpx.ErrorFrom(err)
	}
	switch format {
	case "json":
		return httpx.JSON(http.StatusOK, claims)
	case "csv":
		body, err := toCSV(claims)
		if err != nil {
			return httpx.Error(http.StatusInternalServerError, "export error")
		}
		return httpx.Text(http.StatusOK, "text/csv", body)
	}
	return httpx.Error(http.StatusBadRequest, "format must be csv or json")
}

func toCSV(claims []models.Claim) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"claim_id", "employee_id", "employee_name", "claim_type", "amount", "date", "status", "updated_at"}); err != nil {
		return "", err
	}
	for _, c := range claims {
		row := []string{
			c.ID,
			c.EmployeeID,
			c.EmployeeName,
			string(c.Type),
			c.Amount.StringFixed(2),
			c.Date.Format(validate.DateLayout),
			string(c.Status),
			c.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return buf.String(), w.Error()
}
