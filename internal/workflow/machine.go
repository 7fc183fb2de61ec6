// Package workflow drives claims through their review lifecycle:
//
//	Submitted -> Approved -> Paid
//	Submitted -> Rejected
//	(Auto-Rejected is a system-driven rejection; like Rejected it can be
//	edited back into Submitted)
//
// Paid is terminal.
package workflow

import "github.com/agilehr/benefit-claims-portal/internal/models"

// editableStatuses are the statuses an employee may edit a claim out of.
// Editing always forces the claim back to Submitted.
var editableStatuses = []models.ClaimStatus{
	models.StatusSubmitted,
	models.StatusRejected,
	models.StatusAutoRejected,
}

// CanEdit reports whether a claim in the given status may be edited by its
// owner.
func CanEdit(s models.ClaimStatus) bool {
	for _, e := range editableStatuses {
		if s == e {
			return true
		}
	}
	return false
}

// CanPay reports whether a claim in the given status may be marked paid.
// Only approved claims are payable.
func CanPay(s models.ClaimStatus) bool {
	return s == models.StatusApproved
}

// IsTerminal reports whether no further transition is defined for the status.
func IsTerminal(s models.ClaimStatus) bool {
	return s == models.StatusPaid
}
