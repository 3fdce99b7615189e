package task

import (
	"github.com/manas-swain-001/cms/internal/pkg/validator"
)

// ========================================
// TASK LEDGER DTOs
// ========================================

type SubmitUpdateRequest struct {
	Description string `json:"description"`
}

func (r *SubmitUpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description is required",
		})
	}
	if len(r.Description) > 2000 {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description must not exceed 2000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EntryResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	Slot        string  `json:"slot"`
	Status      string  `json:"status"`
	Description string  `json:"description,omitempty"`
	SubmittedAt *string `json:"submitted_at,omitempty"`
	WarnedAt    *string `json:"warned_at,omitempty"`
	EscalatedAt *string `json:"escalated_at,omitempty"`
}

type LedgerResponse struct {
	UserID  string          `json:"user_id"`
	Date    string          `json:"date"`
	Entries []EntryResponse `json:"entries"`
}

type LedgerFilter struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Slot *string `json:"slot,omitempty"`
}

func (f *LedgerFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Date != "" {
		if _, ok := validator.IsValidDate(f.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.Slot != nil && !validator.IsValidSlot(*f.Slot) {
		errs = append(errs, validator.ValidationError{
			Field:   "slot",
			Message: "slot must be in HH:MM format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SweepResult summarizes what one sweep pass transitioned.
type SweepResult struct {
	Slot      string `json:"slot"`
	Scanned   int    `json:"scanned"`
	Warned    int    `json:"warned"`
	Escalated int    `json:"escalated"`
}
