package types

import (
	"fmt"
	"strings"
)

// ValidateIDPresent ensures a required identifier is non-empty.
func ValidateIDPresent(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateCredentials checks the minimal login/register payload.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateTitle ensures a non-empty, bounded title.
func ValidateTitle(title, field string) error {
	t := strings.TrimSpace(title)
	if t == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(t) > 200 {
		return fmt.Errorf("%s exceeds 200 characters", field)
	}
	return nil
}
