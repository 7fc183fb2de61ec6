package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/audit"
	"github.com/agilehr/benefit-claims-portal/internal/balance"
	"github.com/agilehr/benefit-claims-portal/internal/eligibility"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Repo is the durable claim store.
type Repo interface {
	Insert(ctx context.Context, c models.Claim) error
	Get(ctx context.Context, id string) (models.Claim, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Claim, error)
	ListByStatus(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error)
	Update(ctx context.Context, id string, upd models.ClaimUpdate) (models.Claim, error)
}

// AttachmentSource resolves uploaded documents referenced by a submission.
type AttachmentSource interface {
	GetAttachment(ctx context.Context, id string) (models.Attachment, error)
}

// Settings mutates the cap configuration.
type Settings interface {
	SetQuarterCap(ctx context.Context, amount decimal.Decimal) error
}

// Notifier delivers lifecycle emails. Implementations are fire-and-forget.
type Notifier interface {
	ClaimSubmitted(ctx context.Context, to, claimID string, amount decimal.Decimal)
	StatusChanged(ctx context.Context, to, claimID string, status models.ClaimStatus, comment string)
}

// Auditor records claim actions. Implementations are best-effort.
type Auditor interface {
	Record(ctx context.Context, claimID, action, actorID, actorName, details string)
}

// Service orchestrates claim transitions. Each operation applies the state
// change first; audit and notification follow and never roll it back.
type Service struct {
	repo        Repo
	attachments AttachmentSource
	balance     *balance.Calculator
	settings    Settings
	notifier    Notifier
	auditor     Auditor
	logger      *zap.Logger
	now         func() time.Time
}

// New builds a Service around its collaborators.
func New(repo Repo, attachments AttachmentSource, calc *balance.Calculator, settings Settings, notifier Notifier, auditor Auditor, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		attachments: attachments,
		balance:     calc,
		settings:    settings,
		notifier:    notifier,
		auditor:     auditor,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitInput is a new claim payload, already field-validated by the handler.
type SubmitInput struct {
	Type            models.ClaimType
	Amount          decimal.Decimal
	Date            time.Time
	Description     string
	BillRef         string
	PrescriptionRef string
}

// EditInput is the editable portion of a claim.
type EditInput struct {
	Type        models.ClaimType
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// Submit runs the submission gates in order: eligibility, attachments, then
// balance. A claim is created only when every gate passes.
func (s *Service) Submit(ctx context.Context, actor models.Identity, in SubmitInput) (models.Claim, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return models.Claim{}, apperr.Validation("amount must be greater than zero")
	}
	if in.BillRef == "" {
		return models.Claim{}, apperr.Validation("bill upload is required")
	}

	if elig := eligibility.Evaluate(in.Type, in.Description); !elig.Eligible {
		return models.Claim{}, apperr.Validation("%s", elig.Reason)
	}

	if err := s.verifyAttachment(ctx, actor.Sub, in.BillRef, models.KindBill); err != nil {
		return models.Claim{}, err
	}
	if in.PrescriptionRef != "" {
		if err := s.verifyAttachment(ctx, actor.Sub, in.PrescriptionRef, models.KindPrescription); err != nil {
			return models.Claim{}, err
		}
	}

	now := s.now()
	bal, err := s.balance.Compute(ctx, actor.Sub, now)
	if err != nil {
		return models.Claim{}, err
	}
	if in.Amount.GreaterThan(bal.AnnualRemaining) {
		return models.Claim{}, apperr.Validation("amount exceeds annual cap")
	}
	if in.Type == models.TypeWellness && in.Amount.GreaterThan(bal.QuarterRemaining) {
		return models.Claim{}, apperr.Validation("amount exceeds quarterly cap for Wellness claims")
	}

	claim := models.Claim{
		ID:              ulid.Make().String(),
		EmployeeID:      actor.Sub,
		EmployeeName:    actor.Name,
		EmployeeEmail:   actor.Email,
		Type:            in.Type,
		Amount:          in.Amount,
		Date:            in.Date,
		Description:     in.Description,
		BillRef:         in.BillRef,
		PrescriptionRef: in.PrescriptionRef,
		Status:          models.StatusSubmitted,
		SubmittedAt:     now,
		UpdatedAt:       now,
	}
	if err := s.repo.Insert(ctx, claim); err != nil {
		return models.Claim{}, err
	}

	s.auditor.Record(ctx, claim.ID, audit.ActionSubmitted, actor.Sub, actor.Name, "")
	s.notifier.ClaimSubmitted(ctx, actor.Email, claim.ID, claim.Amount)
	return claim, nil
}

func (s *Service) verifyAttachment(ctx context.Context, ownerID, ref string, kind models.AttachmentKind) error {
	att, err := s.attachments.GetAttachment(ctx, ref)
	if err != nil {
		return err
	}
	if att.EmployeeID != ownerID {
		return apperr.NotFound("attachment not found")
	}
	if att.Kind != kind {
		return apperr.Validation("attachment %s is not a %s upload", ref, kind)
	}
	if att.Status != models.AttachmentComplete {
		return apperr.Validation("attachment %s has not finished uploading", ref)
	}
	return nil
}

// ListOwn returns the caller's claims.
func (s *Service) ListOwn(ctx context.Context, actor models.Identity) ([]models.Claim, error) {
	return s.repo.ListByEmployee(ctx, actor.Sub)
}

// GetOwned fetches a claim the caller owns. Claims owned by someone else
// are reported as not found, not as forbidden.
func (s *Service) GetOwned(ctx context.Context, actor models.Identity, id string) (models.Claim, error) {
	claim, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Claim{}, err
	}
	if claim.EmployeeID != actor.Sub {
		return models.Claim{}, apperr.NotFound("claim not found")
	}
	return claim, nil
}

// Edit updates an owned claim and forces it back to Submitted. Only
// Submitted, Rejected, and Auto-Rejected claims are editable.
func (s *Service) Edit(ctx context.Context, actor models.Identity, id string, in EditInput) (models.Claim, error) {
	claim, err := s.GetOwned(ctx, actor, id)
	if err != nil {
		return models.Claim{}, err
	}
	if !CanEdit(claim.Status) {
		return models.Claim{}, apperr.StateConflict("claim cannot be edited in current status")
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return models.Claim{}, apperr.Validation("amount must be greater than zero")
	}

	status := models.StatusSubmitted
	updated, err := s.repo.Update(ctx, id, models.ClaimUpdate{
		Type:         &in.Type,
		Amount:       &in.Amount,
		Date:         &in.Date,
		Description:  &in.Description,
		Status:       &status,
		UpdatedAt:    s.now(),
		ExpectStatus: editableStatuses,
	})
	if err != nil {
		return models.Claim{}, err
	}

	s.auditor.Record(ctx, id, audit.ActionUpdated, actor.Sub, actor.Name, "")
	return updated, nil
}

// BalanceFor computes the caller's current balance.
func (s *Service) BalanceFor(ctx context.Context, actor models.Identity) (models.ClaimBalance, error) {
	return s.balance.Compute(ctx, actor.Sub, s.now())
}

// Pending lists claims awaiting HR review.
func (s *Service) Pending(ctx context.Context) ([]models.Claim, error) {
	return s.repo.ListByStatus(ctx, models.StatusSubmitted)
}

// ApprovedClaims lists claims awaiting payment.
func (s *Service) ApprovedClaims(ctx context.Context) ([]models.Claim, error) {
	return s.repo.ListByStatus(ctx, models.StatusApproved)
}

// PaidClaims lists settled claims for export.
func (s *Service) PaidClaims(ctx context.Context) ([]models.Claim, error) {
	return s.repo.ListByStatus(ctx, models.StatusPaid)
}

// Approve moves an existing claim to Approved.
func (s *Service) Approve(ctx context.Context, actor models.Identity, id string) (models.Claim, error) {
	status := models.StatusApproved
	updated, err := s.repo.Update(ctx, id, models.ClaimUpdate{
		Status:    &status,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return models.Claim{}, err
	}

	s.auditor.Record(ctx, id, audit.ActionApproved, actor.Sub, actor.Name, "")
	s.notifier.StatusChanged(ctx, updated.EmployeeEmail, id, models.StatusApproved, "")
	return updated, nil
}

// Reject moves an existing claim to Rejected with a mandatory comment.
func (s *Service) Reject(ctx context.Context, actor models.Identity, id, comment string) (models.Claim, error) {
	if strings.TrimSpace(comment) == "" {
		return models.Claim{}, apperr.Validation("comment required")
	}
	status := models.StatusRejected
	updated, err := s.repo.Update(ctx, id, models.ClaimUpdate{
		Status:    &status,
		HRComment: &comment,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return models.Claim{}, err
	}

	s.auditor.Record(ctx, id, audit.ActionRejected, actor.Sub, actor.Name, comment)
	s.notifier.StatusChanged(ctx, updated.EmployeeEmail, id, models.StatusRejected, comment)
	return updated, nil
}

// RequestUpdate stores a reviewer comment without changing status. The
// employee must separately edit the claim; nothing re-enters Submitted here.
func (s *Service) RequestUpdate(ctx context.Context, actor models.Identity, id, comment string) (models.Claim, error) {
	if strings.TrimSpace(comment) == "" {
		return models.Claim{}, apperr.Validation("comment required")
	}
	updated, err := s.repo.Update(ctx, id, models.ClaimUpdate{
		HRComment: &comment,
		UpdatedAt: s.now(),
	})
	if err != nil {
		return models.Claim{}, err
	}

	s.auditor.Record(ctx, id, audit.ActionUpdateRequested, actor.Sub, actor.Name, comment)
	return updated, nil
}

// MarkPaid settles an approved claim. The Approved precondition is enforced
// both here and by the store's conditional update, so a concurrent reviewer
// cannot slip a non-approved claim into Paid.
func (s *Service) MarkPaid(ctx context.Context, actor models.Identity, id string) (models.Claim, error) {
	claim, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Claim{}, err
	}
	if !CanPay(claim.Status) {
		return models.Claim{}, apperr.StateConflict("only approved claims can be marked as paid")
	}

	status := models.StatusPaid
	updated, err := s.repo.Update(ctx, id, models.ClaimUpdate{
		Status:       &status,
		UpdatedAt:    s.now(),
		ExpectStatus: []models.ClaimStatus{models.StatusApproved},
	})
	if err != nil {
		return models.Claim{}, err
	}

	s.auditor.Record(ctx, id, audit.ActionPaid, actor.Sub, actor.Name, "")
	s.notifier.StatusChanged(ctx, updated.EmployeeEmail, id, models.StatusPaid, "")
	return updated, nil
}

// UpdateQuarterCap stores a new quarterly cap. The next balance read picks
// it up; in-flight computations keep the old value.
func (s *Service) UpdateQuarterCap(ctx context.Context, actor models.Identity, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("cap must be greater than zero")
	}
	if err := s.settings.SetQuarterCap(ctx, amount); err != nil {
		return err
	}
	s.logger.Info("quarterly cap updated",
		zap.String("actor", actor.Sub),
		zap.String("amount", amount.String()))
	return nil
}
