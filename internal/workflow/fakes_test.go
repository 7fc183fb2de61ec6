package workflow

import (
	"context"
	"sort"
	"sync"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/shopspring/decimal"
)

// memRepo is an in-memory Repo with the store's conditional-update
// semantics, including the status guard.
type memRepo struct {
	mu     sync.Mutex
	claims map[string]models.Claim
}

func newMemRepo() *memRepo {
	return &memRepo{claims: make(map[string]models.Claim)}
}

func (m *memRepo) Insert(ctx context.Context, c models.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[c.ID]; ok {
		return apperr.Upstream("db error", nil)
	}
	m.claims[c.ID] = c
	return nil
}

func (m *memRepo) Get(ctx context.Context, id string) (models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return models.Claim{}, apperr.NotFound("claim not found")
	}
	return c, nil
}

func (m *memRepo) ListByEmployee(ctx context.Context, employeeID string) ([]models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Claim
	for _, c := range m.claims {
		if c.EmployeeID == employeeID {
			out = append(out, c)
		}
	}
	sortClaims(out)
	return out, nil
}

func (m *memRepo) ListByStatus(ctx context.Context, status models.ClaimStatus) ([]models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Claim
	for _, c := range m.claims {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sortClaims(out)
	return out, nil
}

func sortClaims(cs []models.Claim) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
}

func (m *memRepo) Update(ctx context.Context, id string, upd models.ClaimUpdate) (models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return models.Claim{}, apperr.NotFound("claim not found")
	}
	if len(upd.ExpectStatus) > 0 {
		allowed := false
		for _, st := range upd.ExpectStatus {
			if c.Status == st {
				allowed = true
			}
		}
		if !allowed {
			return models.Claim{}, apperr.StateConflict("claim cannot be modified in status %s", c.Status)
		}
	}
	if upd.Type != nil {
		c.Type = *upd.Type
	}
	if upd.Amount != nil {
		c.Amount = *upd.Amount
	}
	if upd.Date != nil {
		c.Date = *upd.Date
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.BillRef != nil {
		c.BillRef = *upd.BillRef
	}
	if upd.PrescriptionRef != nil {
		c.PrescriptionRef = *upd.PrescriptionRef
	}
	if upd.HRComment != nil {
		c.HRComment = *upd.HRComment
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	c.UpdatedAt = upd.UpdatedAt
	m.claims[id] = c
	return c, nil
}

// memAttachments serves attachment lookups for submission checks.
type memAttachments struct {
	atts map[string]models.Attachment
}

func (m *memAttachments) GetAttachment(ctx context.Context, id string) (models.Attachment, error) {
	a, ok := m.atts[id]
	if !ok {
		return models.Attachment{}, apperr.NotFound("attachment not found")
	}
	return a, nil
}

// memSettings serves caps to the calculator and records cap updates.
type memSettings struct {
	caps models.Caps
}

func (m *memSettings) Caps(ctx context.Context) (models.Caps, error) {
	return m.caps, nil
}

func (m *memSettings) SetQuarterCap(ctx context.Context, amount decimal.Decimal) error {
	m.caps.Quarter = amount
	return nil
}

// spyNotifier records notification calls.
type spyNotifier struct {
	submitted  []string
	statuses   []models.ClaimStatus
	comments   []string
	recipients []string
}

func (n *spyNotifier) ClaimSubmitted(ctx context.Context, to, claimID string, amount decimal.Decimal) {
	n.submitted = append(n.submitted, claimID)
	n.recipients = append(n.recipients, to)
}

func (n *spyNotifier) StatusChanged(ctx context.Context, to, claimID string, status models.ClaimStatus, comment string) {
	n.statuses = append(n.statuses, status)
	n.comments = append(n.comments, comment)
	n.recipients = append(n.recipients, to)
}

// spyAuditor records audit actions.
type spyAuditor struct {
	actions []string
	details []string
}

func (a *spyAuditor) Record(ctx context.Context, claimID, action, actorID, actorName, details string) {
	a.actions = append(a.actions, action)
	a.details = append(a.details, details)
}
