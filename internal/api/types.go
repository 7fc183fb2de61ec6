// Package api contains types for the API requests and responses.
package api

import (
	"time"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/models"
	"github.com/agilehr/benefit-claims-portal/internal/validate"
	"github.com/agilehr/benefit-claims-portal/internal/workflow"

	"github.com/shopspring/decimal"
)

// SubmitClaimRequest is the payload for filing a new claim. Amounts travel
// as strings so clients cannot lose precision to float encoding.
type SubmitClaimRequest struct {
	ClaimType       string `json:"claim_type"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	Description     string `json:"description"`
	BillRef         string `json:"bill_ref"`
	PrescriptionRef string `json:"prescription_ref,omitempty"`
}

// ToInput field-validates the request and converts it for the workflow.
func (r SubmitClaimRequest) ToInput() (workflow.SubmitInput, error) {
	claimType, amount, date, err := parseCommon(r.ClaimType, r.Amount, r.Date, r.Description)
	if err != nil {
		return workflow.SubmitInput{}, err
	}
	return workflow.SubmitInput{
		Type:            claimType,
		Amount:          amount,
		Date:            date,
		Description:     r.Description,
		BillRef:         r.BillRef,
		PrescriptionRef: r.PrescriptionRef,
	}, nil
}

// EditClaimRequest is the payload for editing an existing claim.
type EditClaimRequest struct {
	ClaimType   string `json:"claim_type"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ToInput field-validates the request and converts it for the workflow.
func (r EditClaimRequest) ToInput() (workflow.EditInput, error) {
	claimType, amount, date, err := parseCommon(r.ClaimType, r.Amount, r.Date, r.Description)
	if err != nil {
		return workflow.EditInput{}, err
	}
	return workflow.EditInput{
		Type:        claimType,
		Amount:      amount,
		Date:        date,
		Description: r.Description,
	}, nil
}

func parseCommon(claimType, amount, date, description string) (models.ClaimType, decimal.Decimal, time.Time, error) {
	ct, ok := models.ParseClaimType(claimType)
	if !ok {
		return "", decimal.Zero, time.Time{}, apperr.Validation("unknown claim type %q", claimType)
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return "", decimal.Zero, time.Time{}, apperr.Validation("amount must be a number")
	}
	if err := validate.Amount(amt); err != nil {
		return "", decimal.Zero, time.Time{}, apperr.Validation("%s", err.Error())
	}
	d, err := validate.Date(date)
	if err != nil {
		return "", decimal.Zero, time.Time{}, apperr.Validation("%s", err.Error())
	}
	if err := validate.Description(description); err != nil {
		return "", decimal.Zero, time.Time{}, apperr.Validation("%s", err.Error())
	}
	return ct, amt, d, nil
}

// CommentRequest carries a reviewer comment for reject and request-update.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// CapRequest carries a new cap amount.
type CapRequest struct {
	Amount string `json:"amount"`
}

// PresignRequest asks for an upload URL for a claim document.
type PresignRequest struct {
	Filename    string `json:"filename"`
	Kind        string `json:"kind"` // "bill" or "prescription"
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// PresignResponse returns the presigned upload URL and the headers the
// client must send on PUT.
type PresignResponse struct {
	AttachmentID  string            `json:"attachment_id"`
	S3Key         string            `json:"s3_key"`
	PresignedURL  string            `json:"presigned_url"`
	ExpiresIn     int               `json:"expires_in"`
	ContentType   string            `json:"content_type"`
	UploadHeaders map[string]string `json:"upload_headers"`
}

// Message is a plain acknowledgement body.
type Message struct {
	Message string `json:"message"`
}
