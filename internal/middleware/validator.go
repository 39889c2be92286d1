package middleware

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudscope/cloudscope/internal/domain/resources"
)

// Input validation and sanitization utilities

var resourceIDPattern = regexp.MustCompile(`^[A-Za-z0-9._/:-]{1,256}$`)

// ValidateResourceID checks the id is non-empty and free of control or
// whitespace characters before it reaches the inventory lookup.
func ValidateResourceID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("resource_id cannot be empty")
	}
	if !resourceIDPattern.MatchString(id) {
		return fmt.Errorf("invalid resource_id: %s", id)
	}
	return nil
}

// ValidateTimeRange checks the relative range is one of the known values.
// Empty is allowed; the orchestrator applies the default window.
func ValidateTimeRange(r string) error {
	if r == "" {
		return nil
	}
	if !resources.TimeRange(r).Valid() {
		return fmt.Errorf("invalid time_range: %s (allowed: %s, %s, %s, %s, %s)",
			r,
			resources.RangeLastHour, resources.RangeLast3Hours, resources.RangeLastDay,
			resources.RangeLast7Days, resources.RangeLast30Days)
	}
	return nil
}

// ValidateWorkflowID checks basic shape; existence is checked by the catalog.
func ValidateWorkflowID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("workflow cannot be empty")
	}
	if len(id) > 64 {
		return fmt.Errorf("workflow id too long")
	}
	return nil
}

// ValidateQuestion bounds free-text question size.
func ValidateQuestion(q string) error {
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if len(q) > 2000 {
		return fmt.Errorf("question too long (max 2000 characters)")
	}
	return nil
}

// ValidateBulkSize bounds the resource set of a bulk run.
func ValidateBulkSize(n int) error {
	if n == 0 {
		return fmt.Errorf("resource_ids cannot be empty")
	}
	if n > 500 {
		return fmt.Errorf("too many resources in one bulk run (max 500)")
	}
	return nil
}
