package drafts

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("nonneg_decimal", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})
	_ = v.RegisterValidation("nonneg_int", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= 0
	})
	return v
}

// Validate returns the first reason the draft cannot be submitted. Images are always
// checked before any scalar.
func (s *Store) Validate() error {
	switch d := s.draft.(type) {
	case *Product:
		if len(s.Images()) == 0 {
			return pkgerrors.MissingField("images")
		}
		return firstViolation(validate.Struct(d))
	case *MediaEntry:
		if len(s.Images()) == 0 && strings.TrimSpace(d.VideoURL) == "" {
			return pkgerrors.MissingField("images").
				WithDetails(map[string]any{"field": "images", "alternative": "videoUrl"})
		}
		return nil
	case *Banner:
		if len(s.Images()) == 0 {
			return pkgerrors.MissingField("images")
		}
		return firstViolation(validate.Struct(d))
	}
	return pkgerrors.New(pkgerrors.CodeInternal, "unknown draft kind")
}

func firstViolation(err error) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "draft validation failed")
	}
	fe := errs[0]
	if fe.Tag() == "required" {
		return pkgerrors.MissingField(fe.Field())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %s", fe.Field(), violationMessage(fe.Tag()))).
		WithDetails(map[string]any{"field": fe.Field(), "value": fe.Value()})
}

func violationMessage(tag string) string {
	switch tag {
	case "nonneg_decimal":
		return "must be a non-negative number"
	case "nonneg_int":
		return "must be a non-negative whole number"
	}
	return "is invalid"
}
