package netbox

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIPath is appended to Config.URL to form the API root.
const APIPath = "/api"

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	problems := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fieldErr.Field(), fieldErr.Tag()))
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, ", "))
}

// BaseURL returns the API root: URL without trailing slashes plus "/api".
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.URL, "/") + APIPath
}
