// Package models defines the data models used in the application.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimType is the benefit category a claim is filed under.
type ClaimType string

// Possible values for ClaimType
const (
	TypeOPD      ClaimType = "OPD"
	TypeWellness ClaimType = "Wellness"
)

// ClaimStatus represents where a claim sits in the review workflow.
type ClaimStatus string

// Possible values for ClaimStatus
const (
	StatusSubmitted    ClaimStatus = "Submitted"
	StatusApproved     ClaimStatus = "Approved"
	StatusRejected     ClaimStatus = "Rejected"
	StatusAutoRejected ClaimStatus = "Auto-Rejected"
	StatusPaid         ClaimStatus = "Paid"
)

// Role identifies which part of the API surface a caller may use.
type Role string

// Possible values for Role
const (
	RoleEmployee Role = "Employee"
	RoleHR       Role = "HR"
	RoleAccounts Role = "Accounts"
)

// Claim is a reimbursement request filed by an employee.
type Claim struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	EmployeeEmail   string          `json:"-"`
	Type            ClaimType       `json:"claim_type"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	Description     string          `json:"description"`
	BillRef         string          `json:"bill_ref"`
	PrescriptionRef string          `json:"prescription_ref,omitempty"`
	Status          ClaimStatus     `json:"status"`
	HRComment       string          `json:"hr_comment,omitempty"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ClaimBalance is the remaining allowance for an employee. It is derived
// from approved and paid claims on demand and never persisted.
type ClaimBalance struct {
	AnnualCap        decimal.Decimal `json:"annual_cap"`
	AnnualUsed       decimal.Decimal `json:"annual_used"`
	AnnualRemaining  decimal.Decimal `json:"annual_remaining"`
	QuarterCap       decimal.Decimal `json:"quarter_cap"`
	QuarterUsed      decimal.Decimal `json:"quarter_used"`
	QuarterRemaining decimal.Decimal `json:"quarter_remaining"`
	CurrentQuarter   int             `json:"current_quarter"`
}

// Caps are the reimbursement limits read from the settings store.
type Caps struct {
	Annual  decimal.Decimal
	Quarter decimal.Decimal
}

// AttachmentKind distinguishes the two supported upload slots on a claim.
type AttachmentKind string

// Possible values for AttachmentKind
const (
	KindBill         AttachmentKind = "bill"
	KindPrescription AttachmentKind = "prescription"
)

// AttachmentStatus tracks an upload through the presign/indexer pipeline.
type AttachmentStatus string

// Possible values for AttachmentStatus
const (
	AttachmentUploading AttachmentStatus = "UPLOADING"
	AttachmentComplete  AttachmentStatus = "COMPLETE"
	AttachmentFailed    AttachmentStatus = "FAILED"
)

// Attachment is a supporting document uploaded alongside a claim.
type Attachment struct {
	ID          string           `json:"id"`
	EmployeeID  string           `json:"employee_id"`
	Kind        AttachmentKind   `json:"kind"`
	Filename    string           `json:"filename"`
	S3Key       string           `json:"s3_key"`
	ContentType string           `json:"content_type"`
	SizeBytes   int64            `json:"size_bytes"`
	ETag        string           `json:"etag,omitempty"`
	Status      AttachmentStatus `json:"status"`
	UploadedAt  string           `json:"uploaded_at,omitempty"`
}

// Identity is the authenticated caller extracted from the request.
type Identity struct {
	Sub   string
	Email string
	Name  string
	Role  Role
}

// ParseClaimType validates a wire value against the known claim types.
func ParseClaimType(s string) (ClaimType, bool) {
	switch ClaimType(s) {
	case TypeOPD, TypeWellness:
		return ClaimType(s), true
	}
	return "", false
}
