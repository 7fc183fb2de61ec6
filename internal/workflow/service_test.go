package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/balance"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	asOf     = time.Date(2025, time.March, 6, 12, 0, 0, 0, time.UTC)
	employee = models.Identity{Sub: "emp-1", Email: "emp1@agilehr.example", Name: "Sam Perera", Role: models.RoleEmployee}
	otherEmp = models.Identity{Sub: "emp-2", Email: "emp2@agilehr.example", Name: "Nadia Silva", Role: models.RoleEmployee}
	hr       = models.Identity{Sub: "hr-1", Email: "hr@agilehr.example", Name: "Ruwan Jay", Role: models.RoleHR}
	accounts = models.Identity{Sub: "acc-1", Email: "acc@agilehr.example", Name: "Pat Fern", Role: models.RoleAccounts}
)

type fixture struct {
	svc      *Service
	repo     *memRepo
	atts     *memAttachments
	settings *memSettings
	notifier *spyNotifier
	auditor  *spyAuditor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepo()
	settings := &memSettings{caps: models.Caps{
		Annual:  decimal.NewFromInt(80000),
		Quarter: decimal.NewFromInt(20000),
	}}
	atts := &memAttachments{atts: map[string]models.Attachment{
		"bill-ok": {ID: "bill-ok", EmployeeID: employee.Sub, Kind: models.KindBill, Status: models.AttachmentComplete},
		"rx-ok":   {ID: "rx-ok", EmployeeID: employee.Sub, Kind: models.KindPrescription, Status: models.AttachmentComplete},
		"bill-pending": {
			ID: "bill-pending", EmployeeID: employee.Sub, Kind: models.KindBill, Status: models.AttachmentUploading,
		},
		"bill-foreign": {
			ID: "bill-foreign", EmployeeID: otherEmp.Sub, Kind: models.KindBill, Status: models.AttachmentComplete,
		},
	}}
	notifier := &spyNotifier{}
	auditor := &spyAuditor{}
	calc := &balance.Calculator{Claims: repo, Caps: settings}
	svc := New(repo, atts, calc, settings, notifier, auditor, zaptest.NewLogger(t))
	svc.now = func() time.Time { return asOf }
	return &fixture{svc: svc, repo: repo, atts: atts, settings: settings, notifier: notifier, auditor: auditor}
}

func submitInput(claimType models.ClaimType, amount string) SubmitInput {
	return SubmitInput{
		Type:        claimType,
		Amount:      decimal.RequireFromString(amount),
		Date:        time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC),
		Description: "Doctor consultation",
		BillRef:     "bill-ok",
	}
}

// seed inserts a claim directly into the repo, bypassing the gates.
func (f *fixture) seed(t *testing.T, id string, owner models.Identity, claimType models.ClaimType, amount string, date time.Time, status models.ClaimStatus) models.Claim {
	t.Helper()
	c := models.Claim{
		ID:            id,
		EmployeeID:    owner.Sub,
		EmployeeName:  owner.Name,
		EmployeeEmail: owner.Email,
		Type:          claimType,
		Amount:        decimal.RequireFromString(amount),
		Date:          date,
		Description:   "seeded",
		BillRef:       "bill-ok",
		Status:        status,
		SubmittedAt:   date,
		UpdatedAt:     date,
	}
	require.NoError(t, f.repo.Insert(context.Background(), c))
	return c
}

func TestSubmitCreatesSubmittedClaim(t *testing.T) {
	f := newFixture(t)

	claim, err := f.svc.Submit(context.Background(), employee, submitInput(models.TypeOPD, "5000"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, claim.Status)
	assert.Equal(t, employee.Sub, claim.EmployeeID)
	assert.Equal(t, asOf, claim.SubmittedAt)
	assert.Equal(t, asOf, claim.UpdatedAt)
	assert.NotEmpty(t, claim.ID)

	assert.Equal(t, []string{"CLAIM_SUBMITTED"}, f.auditor.actions)
	assert.Equal(t, []string{claim.ID}, f.notifier.submitted)

	// A submitted claim reserves nothing; the balance moves once HR approves.
	bal, err := f.svc.BalanceFor(context.Background(), employee)
	require.NoError(t, err)
	assert.True(t, bal.AnnualRemaining.Equal(decimal.NewFromInt(80000)))

	_, err = f.svc.Approve(context.Background(), hr, claim.ID)
	require.NoError(t, err)
	bal, err = f.svc.BalanceFor(context.Background(), employee)
	require.NoError(t, err)
	assert.True(t, bal.AnnualRemaining.Equal(decimal.NewFromInt(75000)), bal.AnnualRemaining.String())
}

func TestSubmitRequiresBill(t *testing.T) {
	f := newFixture(t)
	in := submitInput(models.TypeOPD, "5000")
	in.BillRef = ""

	_, err := f.svc.Submit(context.Background(), employee, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, f.auditor.actions)
}

func TestSubmitRejectsEquipmentWellness(t *testing.T) {
	f := newFixture(t)
	in := submitInput(models.TypeWellness, "10")
	in.Description = "Bought a treadmill"

	_, err := f.svc.Submit(context.Background(), employee, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "equipment")

	// Rejected regardless of amount, even well under every cap.
	claims, _ := f.repo.ListByEmployee(context.Background(), employee.Sub)
	assert.Empty(t, claims)
}

func TestSubmitAttachmentChecks(t *testing.T) {
	f := newFixture(t)

	in := submitInput(models.TypeOPD, "100")
	in.BillRef = "bill-pending"
	_, err := f.svc.Submit(context.Background(), employee, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in.BillRef = "bill-foreign"
	_, err = f.svc.Submit(context.Background(), employee, in)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	in.BillRef = "rx-ok" // wrong slot
	_, err = f.svc.Submit(context.Background(), employee, in)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	in.BillRef = "bill-ok"
	in.PrescriptionRef = "rx-ok"
	_, err = f.svc.Submit(context.Background(), employee, in)
	assert.NoError(t, err)
}

func TestSubmitAnnualCapGate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prior-1", employee, models.TypeOPD, "75000", time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC), models.StatusApproved)

	_, err := f.svc.Submit(context.Background(), employee, submitInput(models.TypeOPD, "6000"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "annual cap")

	claim, err := f.svc.Submit(context.Background(), employee, submitInput(models.TypeOPD, "5000"))
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), hr, claim.ID)
	require.NoError(t, err)
	bal, err := f.svc.BalanceFor(context.Background(), employee)
	require.NoError(t, err)
	assert.True(t, bal.AnnualRemaining.IsZero(), bal.AnnualRemaining.String())
}

func TestSubmitQuarterCapGate(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prior-1", employee, models.TypeWellness, "15000", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), models.StatusPaid)

	in := submitInput(models.TypeWellness, "5001")
	in.Description = "Gym membership"
	_, err := f.svc.Submit(context.Background(), employee, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "quarterly cap")

	in.Amount = decimal.RequireFromString("5000")
	claim, err := f.svc.Submit(context.Background(), employee, in)
	require.NoError(t, err)

	// Remaining lands exactly on zero once approved.
	_, err = f.svc.Approve(context.Background(), hr, claim.ID)
	require.NoError(t, err)
	bal, err := f.svc.BalanceFor(context.Background(), employee)
	require.NoError(t, err)
	assert.True(t, bal.QuarterRemaining.IsZero(), bal.QuarterRemaining.String())
}

func TestQuarterCapIgnoresOPD(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prior-1", employee, models.TypeOPD, "19999", time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), models.StatusApproved)

	in := submitInput(models.TypeWellness, "15000")
	in.Description = "Swimming lessons"
	_, err := f.svc.Submit(context.Background(), employee, in)
	assert.NoError(t, err)
}

func TestEditRules(t *testing.T) {
	f := newFixture(t)
	edit := EditInput{
		Type:        models.TypeOPD,
		Amount:      decimal.RequireFromString("750"),
		Date:        time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		Description: "Updated description",
	}

	f.seed(t, "c-approved", employee, models.TypeOPD, "100", asOf, models.StatusApproved)
	_, err := f.svc.Edit(context.Background(), employee, "c-approved", edit)
	assert.Equal(t, apperr.KindStateConflict, apperr.KindOf(err))

	f.seed(t, "c-rejected", employee, models.TypeOPD, "100", asOf, models.StatusRejected)
	updated, err := f.svc.Edit(context.Background(), employee, "c-rejected", edit)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, updated.Status)
	assert.True(t, updated.Amount.Equal(edit.Amount))

	f.seed(t, "c-auto", employee, models.TypeOPD, "100", asOf, models.StatusAutoRejected)
	updated, err = f.svc.Edit(context.Background(), employee, "c-auto", edit)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, updated.Status)

	// Ownership: someone else's claim reads as not found.
	_, err = f.svc.Edit(context.Background(), otherEmp, "c-rejected", edit)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.Edit(context.Background(), employee, "missing", edit)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestApproveNotifiesAndAudits(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "c-1", employee, models.TypeOPD, "100", asOf, models.StatusSubmitted)

	claim, err := f.svc.Approve(context.Background(), hr, "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, claim.Status)
	assert.Equal(t, []string{"CLAIM_APPROVED"}, f.auditor.actions)
	assert.Equal(t, []models.ClaimStatus{models.StatusApproved}, f.notifier.statuses)
	assert.Equal(t, []string{employee.Email}, f.notifier.recipients)

	_, err = f.svc.Approve(context.Background(), hr, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRejectRequiresComment(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "c-1", employee, models.TypeOPD, "100", asOf, models.StatusSubmitted)

	_, err := f.svc.Reject(context.Background(), hr, "c-1", "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	claim, err := f.svc.Reject(context.Background(), hr, "c-1", "bill is illegible")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, claim.Status)
	assert.Equal(t, "bill is illegible", claim.HRComment)
	assert.Equal(t, []string{"bill is illegible"}, f.notifier.comments)
}

func TestRequestUpdateKeepsStatus(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "c-1", employee, models.TypeOPD, "100", asOf, models.StatusSubmitted)

	_, err := f.svc.RequestUpdate(context.Background(), hr, "c-1", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	claim, err := f.svc.RequestUpdate(context.Background(), hr, "c-1", "attach the prescription")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, claim.Status)
	assert.Equal(t, "attach the prescription", claim.HRComment)
	assert.Equal(t, []string{"UPDATE_REQUESTED"}, f.auditor.actions)
	// No status email for a request-update; the employee acts via Edit.
	assert.Empty(t, f.notifier.statuses)
}

func TestMarkPaidRequiresApproved(t *testing.T) {
	f := newFixture(t)

	for _, status := range []models.ClaimStatus{
		models.StatusSubmitted,
		models.StatusRejected,
		models.StatusAutoRejected,
		models.StatusPaid,
	} {
		id := "c-" + string(status)
		f.seed(t, id, employee, models.TypeOPD, "100", asOf, status)
		_, err := f.svc.MarkPaid(context.Background(), accounts, id)
		assert.Equal(t, apperr.KindStateConflict, apperr.KindOf(err), string(status))
	}

	f.seed(t, "c-ok", employee, models.TypeOPD, "100", asOf, models.StatusApproved)
	claim, err := f.svc.MarkPaid(context.Background(), accounts, "c-ok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, claim.Status)
	assert.Equal(t, []string{"PAYMENT_PROCESSED"}, f.auditor.actions)
	assert.Equal(t, []models.ClaimStatus{models.StatusPaid}, f.notifier.statuses)

	_, err = f.svc.MarkPaid(context.Background(), accounts, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestQueues(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "c-1", employee, models.TypeOPD, "100", asOf, models.StatusSubmitted)
	f.seed(t, "c-2", otherEmp, models.TypeOPD, "200", asOf, models.StatusApproved)
	f.seed(t, "c-3", employee, models.TypeOPD, "300", asOf, models.StatusPaid)

	pending, err := f.svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c-1", pending[0].ID)

	approved, err := f.svc.ApprovedClaims(context.Background())
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "c-2", approved[0].ID)

	paid, err := f.svc.PaidClaims(context.Background())
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "c-3", paid[0].ID)
}

func TestUpdateQuarterCap(t *testing.T) {
	f := newFixture(t)

	err := f.svc.UpdateQuarterCap(context.Background(), hr, decimal.NewFromInt(-5))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, f.svc.UpdateQuarterCap(context.Background(), hr, decimal.NewFromInt(25000)))

	// The next balance read sees the new cap.
	bal, err := f.svc.BalanceFor(context.Background(), employee)
	require.NoError(t, err)
	assert.True(t, bal.QuarterCap.Equal(decimal.NewFromInt(25000)))
}

func TestGetOwned(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "c-1", employee, models.TypeOPD, "100", asOf, models.StatusSubmitted)

	claim, err := f.svc.GetOwned(context.Background(), employee, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", claim.ID)

	_, err = f.svc.GetOwned(context.Background(), otherEmp, "c-1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
