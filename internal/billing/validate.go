package billing

import (
	"fmt"
	"strings"
)

// ValidationError reports the first condition that blocks a finalize or send.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidateForSend checks the finalize gate: a customer with name and email
// must be attached, the project name must be set, and every line item needs a
// description and a non-zero amount. The first failing condition is returned;
// nothing is saved when validation fails. Negative amounts from over-discount
// pass validation deliberately.
func ValidateForSend(d *Document) error {
	if strings.TrimSpace(d.Customer.Name) == "" {
		return &ValidationError{Field: "customer", Reason: "a customer must be selected"}
	}
	if strings.TrimSpace(d.Customer.Email) == "" {
		return &ValidationError{Field: "customer.email", Reason: "customer email is required"}
	}
	if strings.TrimSpace(d.ProjectName) == "" {
		return &ValidationError{Field: "project_name", Reason: "project name is required"}
	}
	if len(d.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one line item is required"}
	}
	for i := range d.Items {
		if strings.TrimSpace(d.Items[i].Description) == "" {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].description", i),
				Reason: "description is required",
			}
		}
		if d.Items[i].Amount == 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("items[%d].amount", i),
				Reason: "line amount must not be zero",
			}
		}
	}
	return nil
}
