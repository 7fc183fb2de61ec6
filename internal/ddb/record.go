package ddb

import (
	"fmt"
	"time"

	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/shopspring/decimal"
)

// Single-table layout. Claims own their partition so audit entries can
// share it:
//
//	CLAIM#<id> / META      claim record
//	CLAIM#<id> / AUDIT#... audit entries (see internal/audit)
//	ATT#<id>   / META      attachment record
//	SETTINGS   / CAP#...   cap settings
//
// GSI1 (employee-index) lists an employee's claims, GSI2 (status-index)
// lists claims by workflow status.
const (
	skMeta     = "META"
	dateLayout = "2006-01-02"

	IndexEmployee = "employee-index"
	IndexStatus   = "status-index"
)

func claimPK(id string) string         { return "CLAIM#" + id }
func employeeGSI(id string) string     { return "EMP#" + id }
func statusGSI(s models.ClaimStatus) string { return "STATUS#" + string(s) }

// NowISO returns the current time in ISO8601 format.
func NowISO() string { return time.Now().UTC().Format(time.RFC3339) }

// claimRecord is the persisted shape of a claim. Amounts travel as strings
// so decimal values survive the round trip without float drift.
type claimRecord struct {
	PK              string `dynamodbav:"PK"`
	SK              string `dynamodbav:"SK"`
	GSI1PK          string `dynamodbav:"GSI1PK"`
	GSI1SK          string `dynamodbav:"GSI1SK"`
	GSI2PK          string `dynamodbav:"GSI2PK"`
	GSI2SK          string `dynamodbav:"GSI2SK"`
	ClaimID         string `dynamodbav:"claim_id"`
	EmployeeID      string `dynamodbav:"employee_id"`
	EmployeeName    string `dynamodbav:"employee_name"`
	EmployeeEmail   string `dynamodbav:"employee_email"`
	ClaimType       string `dynamodbav:"claim_type"`
	Amount          string `dynamodbav:"amount"`
	Date            string `dynamodbav:"claim_date"`
	Description     string `dynamodbav:"description"`
	BillRef         string `dynamodbav:"bill_ref"`
	PrescriptionRef string `dynamodbav:"prescription_ref,omitempty"`
	Status          string `dynamodbav:"claim_status"`
	HRComment       string `dynamodbav:"hr_comment,omitempty"`
	SubmittedAt     string `dynamodbav:"submitted_at"`
	UpdatedAt       string `dynamodbav:"updated_at"`
}

func toRecord(c models.Claim) claimRecord {
	return claimRecord{
		PK:              claimPK(c.ID),
		SK:              skMeta,
		GSI1PK:          employeeGSI(c.EmployeeID),
		GSI1SK:          c.SubmittedAt.UTC().Format(time.RFC3339),
		GSI2PK:          statusGSI(c.Status),
		GSI2SK:          c.UpdatedAt.UTC().Format(time.RFC3339),
		ClaimID:         c.ID,
		EmployeeID:      c.EmployeeID,
		EmployeeName:    c.EmployeeName,
		EmployeeEmail:   c.EmployeeEmail,
		ClaimType:       string(c.Type),
		Amount:          c.Amount.String(),
		Date:            c.Date.UTC().Format(dateLayout),
		Description:     c.Description,
		BillRef:         c.BillRef,
		PrescriptionRef: c.PrescriptionRef,
		Status:          string(c.Status),
		HRComment:       c.HRComment,
		SubmittedAt:     c.SubmittedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func fromRecord(r claimRecord) (models.Claim, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return models.Claim{}, fmt.Errorf("claim %s: bad amount %q: %w", r.ClaimID, r.Amount, err)
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return models.Claim{}, fmt.Errorf("claim %s: bad date %q: %w", r.ClaimID, r.Date, err)
	}
	submittedAt, err := time.Parse(time.RFC3339, r.SubmittedAt)
	if err != nil {
		return models.Claim{}, fmt.Errorf("claim %s: bad submitted_at %q: %w", r.ClaimID, r.SubmittedAt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339, r.UpdatedAt)
	if err != nil {
		return models.Claim{}, fmt.Errorf("claim %s: bad updated_at %q: %w", r.ClaimID, r.UpdatedAt, err)
	}
	return models.Claim{
		ID:              r.ClaimID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		EmployeeEmail:   r.EmployeeEmail,
		Type:            models.ClaimType(r.ClaimType),
		Amount:          amount,
		Date:            date,
		Description:     r.Description,
		BillRef:         r.BillRef,
		PrescriptionRef: r.PrescriptionRef,
		Status:          models.ClaimStatus(r.Status),
		HRComment:       r.HRComment,
		SubmittedAt:     submittedAt,
		UpdatedAt:       updatedAt,
	}, nil
}
