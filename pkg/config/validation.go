package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Struct tag validation handles the declarative constraints; custom rules
// cover what tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	if cfg.Storage.Backend == "badger" && cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path: required when storage.backend is badger")
	}

	if !strings.HasPrefix(cfg.Auth.AdminPasswordHash, "$2") {
		return fmt.Errorf("auth.admin_password_hash: must be a bcrypt hash (run 'snapfile init')")
	}

	for i, prefix := range cfg.RateLimit.DisabledRoutes {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("rate_limit.disabled_routes[%d]: prefix %q must start with /", i, prefix)
		}
	}
	for i, prefix := range cfg.Auth.DisabledRoutes {
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("auth.disabled_routes[%d]: prefix %q must start with /", i, prefix)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
