// Package config is the interactive form behind "notifeed login".
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
)

// Values holds what the login form edits.
type Values struct {
	BaseURL  string
	Token    string
	Rollback bool
}

// NewForm builds the login form over v. Fields start with v's current
// contents.
func NewForm(v *Values) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Store URL").
				Description("Notification Store base URL").
				Placeholder("http://localhost:8080").
				Value(&v.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Token").
				Description("Bearer token, kept in the system keyring. Leave empty if the store is open.").
				EchoMode(huh.EchoModePassword).
				Value(&v.Token),
			huh.NewConfirm().
				Title("Restore unread state when marking fails?").
				Affirmative("Yes").
				Negative("No").
				Value(&v.Rollback),
		),
	)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	if err := validateRequired("URL")(s); err != nil {
		return err
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host (e.g., https://bank.example.com)")
	}
	return nil
}
