// Package httpx provides helper functions for creating HTTP responses.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"

	"github.com/aws/aws-lambda-go/events"
)

// JSON creates a JSON HTTP response with the given status code and value.
func JSON(status int, v any) (events.APIGatewayV2HTTPResponse, error) {
	b, _ := json.Marshal(v)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: string(b),
	}, nil
}

// Error creates a JSON HTTP error response with the given status code and message.
func Error(status int, msg string) (events.APIGatewayV2HTTPResponse, error) {
	return JSON(status, map[string]string{"message": msg})
}

// Text creates a plain response with an explicit content type, used by the
// CSV export.
func Text(status int, contentType, body string) (events.APIGatewayV2HTTPResponse, error) {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type": contentType,
		},
		Body: body,
	}, nil
}

// StatusOf maps an application error to its HTTP status.
func StatusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStateConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorFrom maps an application error to a JSON error response.
func ErrorFrom(err error) (events.APIGatewayV2HTTPResponse, error) {
	return Error(StatusOf(err), apperr.Message(err))
}
