// Package main issues presigned S3 URLs for claim document uploads.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/agilehr/benefit-claims-portal/internal/api"
	"github.com/agilehr/benefit-claims-portal/internal/app"
	"github.com/agilehr/benefit-claims-portal/internal/attach"
	"github.com/agilehr/benefit-claims-portal/internal/authz"
	"github.com/agilehr/benefit-claims-portal/internal/httpx"
	"github.com/agilehr/benefit-claims-portal/internal/models"
	"github.com/agilehr/benefit-claims-portal/internal/validate"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/oklog/ulid/v2"
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

// handle processes POST /attachments/presign.
func handle(ctx context.Context, a *app.App, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	actor, err := authz.FromRequest(req, a.Env.DevBypassAuth)
	if err != nil {
		return httpx.Error(http.StatusUnauthorized, "missing user")
	}
	if err := authz.Require(actor, models.RoleEmployee); err != nil {
		return httpx.Error(http.StatusForbidden, "employee role required")
	}

	var body api.PresignRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return httpx.Error(http.StatusBadRequest, "invalid json")
	}
	if body.ContentType == "" {
		body.ContentType = validate.ContentTypeFor(body.Filename)
	}
	kind, err := parseKind(body.Kind)
	if err != nil {
		return httpx.Error(http.StatusBadRequest, err.Error())
	}
	if err := validateRequest(body); err != nil {
		return httpx.Error(http.StatusBadRequest, err.Error())
	}

	attachmentID := ulid.Make().String()
	key := attach.BuildKey(actor.Sub, attachmentID, body.Filename)

	pending := models.Attachment{
		ID:          attachmentID,
		EmployeeID:  actor.Sub,
		Kind:        kind,
		Filename:    body.Filename,
		S3Key:       key,
		ContentType: body.ContentType,
		SizeBytes:   body.SizeBytes,
		Status:      models.AttachmentUploading,
	}
	if err := a.Repo.PutPendingAttachment(ctx, pending); err != nil {
		a.Logger.Error("attachment record failed", zap.Error(err))
		return httpx.Error(http.StatusInternalServerError, "db error")
	}

	meta := map[string]string{
		"attachment_id":   attachmentID,
		"employee_id":     actor.Sub,
		"attachment_kind": string(kind),
	}
	url, ttl, err := attach.PresignPut(ctx, a.Presigner, a.Env.Bucket, key, body.ContentType, meta, a.Env.PresignTTL)
	if err != nil {
		a.Logger.Error("presign failed", zap.Error(err))
		return httpx.Error(http.StatusInternalServerError, "presign error")
	}

	return httpx.JSON(http.StatusOK, api.PresignResponse{
		AttachmentID:  attachmentID,
		S3Key:         key,
		PresignedURL:  url,
		ExpiresIn:     int(ttl.Seconds()),
		ContentType:   body.ContentType,
		UploadHeaders: attach.UploadHeaders(actor.Sub, attachmentID, body.ContentType, string(kind)),
	})
}

func parseKind(s string) (models.AttachmentKind, error) {
	switch models.AttachmentKind(s) {
	case models.KindBill, models.KindPrescription:
		return models.AttachmentKind(s), nil
	}
	return "", errors.New(`kind must be "bill" or "prescription"`)
}

// validateRequest validates all fields in the presign request.
func validateRequest(req api.PresignRequest) error {
	validators := []func() error{
		func() error { return validate.Filename(req.Filename) },
		func() error { return validate.ContentType(req.ContentType) },
		func() error { return validate.SizeOK(req.SizeBytes) },
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}
