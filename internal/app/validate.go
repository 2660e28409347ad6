package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"play_reviews/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report config keys, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateConfig returns one FieldError per invalid key; nil means valid.
func ValidateConfig(cfg domain.Config) []domain.FieldError {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.FieldError{{Key: "config", ErrorText: err.Error()}}
	}
	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		value := fmt.Sprint(fe.Value())
		out = append(out, domain.FieldError{
			Key:       key,
			Value:     value,
			ErrorText: fmt.Sprintf("%q %q is invalid: failed %q", key, value, fe.Tag()),
		})
	}
	return out
}
