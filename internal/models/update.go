package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimUpdate describes a partial mutation of a claim. Nil fields are left
// untouched. When ExpectStatus is non-empty the store applies the update
// only while the claim is in one of those statuses, which serializes
// concurrent transitions on the same claim.
type ClaimUpdate struct {
	Type            *ClaimType
	Amount          *decimal.Decimal
	Date            *time.Time
	Description     *string
	BillRef         *string
	PrescriptionRef *string
	Status          *ClaimStatus
	HRComment       *string
	UpdatedAt       time.Time
	ExpectStatus    []ClaimStatus
}
