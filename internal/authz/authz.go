// Package authz extracts the caller's identity and role from API Gateway
// requests and gates each surface to its role.
package authz

import (
	"errors"
	"strings"

	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-lambda-go/events"
)

// ErrUnauthorized is returned when no identity can be established.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the caller's role does not cover the surface.
var ErrForbidden = errors.New("forbidden")

// Dev bypass headers, honored only when DEV_BYPASS_AUTH=true.
const (
	devSubHeader   = "x-user-sub"
	devRoleHeader  = "x-user-role"
	devEmailHeader = "x-user-email"
	devNameHeader  = "x-user-name"
)

// header retrieves a header value in a case-insensitive manner.
func header(h map[string]string, key string) string {
	lk := strings.ToLower(key)
	for k, v := range h {
		if strings.ToLower(k) == lk {
			return v
		}
	}
	return ""
}

// roleFromClaim normalizes the role claim; an unknown or missing role
// defaults to Employee, the least-privileged surface.
func roleFromClaim(s string) models.Role {
	switch models.Role(strings.TrimSpace(s)) {
	case models.RoleHR:
		return models.RoleHR
	case models.RoleAccounts:
		return models.RoleAccounts
	default:
		return models.RoleEmployee
	}
}

// FromRequest extracts the caller identity from an HTTP API (v2) request.
// The authorizer's JWT claims are the source of truth; the dev bypass
// headers stand in for them in local stacks.
func FromRequest(req events.APIGatewayV2HTTPRequest, devBypass bool) (models.Identity, error) {
	if devBypass {
		if sub := strings.TrimSpace(header(req.Headers, devSubHeader)); sub != "" {
			return models.Identity{
				Sub:   sub,
				Email: header(req.Headers, devEmailHeader),
				Name:  header(req.Headers, devNameHeader),
				Role:  roleFromClaim(header(req.Headers, devRoleHeader)),
			}, nil
		}
	}

	if req.RequestContext.Authorizer != nil && req.RequestContext.Authorizer.JWT != nil {
		claims := req.RequestContext.Authorizer.JWT.Claims
		if sub := claims["sub"]; sub != "" {
			return models.Identity{
				Sub:   sub,
				Email: claims["email"],
				Name:  claims["name"],
				Role:  roleFromClaim(claims["custom:role"]),
			}, nil
		}
	}

	return models.Identity{}, ErrUnauthorized
}

// Require checks that the identity holds the given role.
func Require(id models.Identity, role models.Role) error {
	if id.Role != role {
		return ErrForbidden
	}
	return nil
}
