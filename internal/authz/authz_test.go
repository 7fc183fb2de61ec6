package authz

import (
	"testing"

	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwtRequest(claims map[string]string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			Authorizer: &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
				JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{
					Claims: claims,
				},
			},
		},
	}
}

func TestFromRequestJWT(t *testing.T) {
	req := jwtRequest(map[string]string{
		"sub":         "emp-42",
		"email":       "emp42@agilehr.example",
		"name":        "Sam Perera",
		"custom:role": "HR",
	})

	id, err := FromRequest(req, false)
	require.NoError(t, err)
	assert.Equal(t, "emp-42", id.Sub)
	assert.Equal(t, "emp42@agilehr.example", id.Email)
	assert.Equal(t, "Sam Perera", id.Name)
	assert.Equal(t, models.RoleHR, id.Role)
}

func TestFromRequestDefaultsToEmployeeRole(t *testing.T) {
	id, err := FromRequest(jwtRequest(map[string]string{"sub": "emp-1"}), false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, id.Role)

	id, err = FromRequest(jwtRequest(map[string]string{"sub": "emp-1", "custom:role": "SuperAdmin"}), false)
	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, id.Role)
}

func TestFromRequestMissingIdentity(t *testing.T) {
	_, err := FromRequest(events.APIGatewayV2HTTPRequest{}, false)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestFromRequestDevBypass(t *testing.T) {
	req := events.APIGatewayV2HTTPRequest{
		Headers: map[string]string{
			"X-User-Sub":  "emp-7",
			"x-user-role": "Accounts",
		},
	}

	// Ignored unless bypass is enabled.
	_, err := FromRequest(req, false)
	assert.ErrorIs(t, err, ErrUnauthorized)

	id, err := FromRequest(req, true)
	require.NoError(t, err)
	assert.Equal(t, "emp-7", id.Sub)
	assert.Equal(t, models.RoleAccounts, id.Role)
}

func TestRequire(t *testing.T) {
	hr := models.Identity{Sub: "u1", Role: models.RoleHR}
	assert.NoError(t, Require(hr, models.RoleHR))
	assert.ErrorIs(t, Require(hr, models.RoleAccounts), ErrForbidden)
	assert.ErrorIs(t, Require(hr, models.RoleEmployee), ErrForbidden)
}
