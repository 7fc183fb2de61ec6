// Package eligibility decides whether a claim category and description are
// reimbursable at all, before any balance math runs.
package eligibility

import (
	"strings"

	"github.com/agilehr/benefit-claims-portal/internal/models"
)

// Wellness claims cover activities, not hardware. The match is a plain
// case-insensitive substring check, so "motorbike" trips on "bike"; that is
// the documented behavior, reviewed claims catch the rest.
var wellnessEquipmentKeywords = []string{
	"equipment",
	"treadmill",
	"dumbbell",
	"weights",
	"machine",
	"bike",
	"cycle",
	"gym equipment",
}

// ReasonEquipment is the rejection reason for equipment-bearing wellness claims.
const ReasonEquipment = "Wellness claims cannot include equipment purchases"

// Result is the outcome of an eligibility check.
type Result struct {
	Eligible bool
	Reason   string
}

// ContainsEquipment reports whether the description mentions any excluded
// equipment keyword.
func ContainsEquipment(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range wellnessEquipmentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Evaluate checks a claim's category and description. OPD claims have no
// restrictions; Wellness claims must not mention equipment. Pure and
// deterministic, no side effects.
func Evaluate(claimType models.ClaimType, description string) Result {
	if claimType == models.TypeWellness && ContainsEquipment(description) {
		return Result{Eligible: false, Reason: ReasonEquipment}
	}
	return Result{Eligible: true}
}
