// Package validation checks struct shape at the ledger boundary using
// go-playground/validator tags and reports failures as AppError details.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"pharmaledger/internal/core/apperror"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return instance
}

// Struct validates v and converts failures into a VALIDATION_ERROR whose
// "fields" detail maps field name to the failed rule.
func Struct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewValidation(err.Error())
	}
	return apperror.NewValidation("invalid input").WithDetail("fields", fieldErrors(verrs))
}

// Items validates every element and reports failures per 1-based line number.
// All items are checked before returning.
func Items[T any](items []T) error {
	failures := make(map[string]any)
	for i := range items {
		err := Validator().Struct(items[i])
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			failures[fmt.Sprintf("%d", i+1)] = fieldErrors(verrs)
		} else {
			failures[fmt.Sprintf("%d", i+1)] = err.Error()
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return apperror.NewValidation("invalid line items").WithDetail("lines", failures)
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}
