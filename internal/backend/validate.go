package backend

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Tokens an analysable product URL must contain.
const (
	MarketplaceToken = "amazon.com.br"
	ProductPathToken = "/dp/"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError explains why a request was rejected before any network call.
type ValidationError struct {
	Empty bool
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	if e.Empty {
		return "product URL is required"
	}
	return fmt.Sprintf("product URL must be an %s link containing %s (failed %s)", MarketplaceToken, ProductPathToken, e.Rule)
}

// Validate checks the request against its struct tags.
func (r AnalysisRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate request: %w", err)
	}
	first := fieldErrs[0]
	return &ValidationError{
		Empty: first.Tag() == "required",
		Field: first.Field(),
		Rule:  first.Tag() + "=" + first.Param(),
	}
}
