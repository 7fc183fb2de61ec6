// Package balance computes the remaining reimbursement allowance for an
// employee: an annual cap over all claims and a quarterly cap that applies
// to Wellness claims only.
package balance

import (
	"context"
	"time"

	"github.com/agilehr/benefit-claims-portal/internal/apperr"
	"github.com/agilehr/benefit-claims-portal/internal/models"

	"github.com/shopspring/decimal"
)

// ClaimSource lists an employee's claims for balance computation.
type ClaimSource interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Claim, error)
}

// CapSource resolves the current caps from the settings store.
type CapSource interface {
	Caps(ctx context.Context) (models.Caps, error)
}

// Calculator derives ClaimBalance values on demand. Results are never
// cached; two calls with no intervening claim changes return identical
// balances.
type Calculator struct {
	Claims ClaimSource
	Caps   CapSource
}

// QuarterOf returns the calendar quarter (1-4) containing t.
func QuarterOf(t time.Time) int {
	return int(t.Month()-1)/3 + 1
}

// yearWindow returns [start, next) bounds for the calendar year containing t.
func yearWindow(t time.Time) (start, next time.Time) {
	start = time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// quarterWindow returns [start, next) bounds for the calendar quarter
// containing t.
func quarterWindow(t time.Time) (start, next time.Time) {
	q := QuarterOf(t)
	start = time.Date(t.Year(), time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 3, 0)
}

// inWindow reports whether d falls in [start, next). The exclusive upper
// bound is the first instant of the following period, so any time on the
// period's last day counts.
func inWindow(d, start, next time.Time) bool {
	return !d.Before(start) && d.Before(next)
}

// counted reports whether a claim consumes allowance. Only approved and
// paid claims do; submitted and rejected claims reserve nothing.
func counted(c models.Claim) bool {
	return c.Status == models.StatusApproved || c.Status == models.StatusPaid
}

// Compute derives the balance for employeeID as of asOf.
//
// Remaining values may be negative, for example after a cap is lowered;
// that is a reportable condition, not an error. Callers gating a submission
// must check the requested amount against the remaining values themselves.
func (c *Calculator) Compute(ctx context.Context, employeeID string, asOf time.Time) (models.ClaimBalance, error) {
	caps, err := c.Caps.Caps(ctx)
	if err != nil {
		return models.ClaimBalance{}, apperr.Upstream("settings unavailable", err)
	}

	claims, err := c.Claims.ListByEmployee(ctx, employeeID)
	if err != nil {
		return models.ClaimBalance{}, apperr.Upstream("claims unavailable", err)
	}

	yearStart, yearNext := yearWindow(asOf)
	quarterStart, quarterNext := quarterWindow(asOf)

	annualUsed := decimal.Zero
	quarterUsed := decimal.Zero
	for _, cl := range claims {
		if !counted(cl) {
			continue
		}
		if inWindow(cl.Date, yearStart, yearNext) {
			annualUsed = annualUsed.Add(cl.Amount)
		}
		if cl.Type == models.TypeWellness && inWindow(cl.Date, quarterStart, quarterNext) {
			quarterUsed = quarterUsed.Add(cl.Amount)
		}
	}

	return models.ClaimBalance{
		AnnualCap:        caps.Annual,
		AnnualUsed:       annualUsed,
		AnnualRemaining:  caps.Annual.Sub(annualUsed),
		QuarterCap:       caps.Quarter,
		QuarterUsed:      quarterUsed,
		QuarterRemaining: caps.Quarter.Sub(quarterUsed),
		CurrentQuarter:   QuarterOf(asOf),
	}, nil
}
