package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"chunkdash/internal/chunking"
	apierrors "chunkdash/internal/errors"
)

// Validator validates request structs with struct tags. Field names in errors
// are the json names.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the custom daydate and monthkey tags.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("daydate", isDayDate)
	v.RegisterValidation("monthkey", isMonthKey)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Struct validates v and returns a VALIDATION_FAILED APIError listing every
// failing field.
func (m *Validator) Struct(v interface{}) error {
	err := m.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fieldPath(fe),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// Bind decodes the body (JSON or form, by Content-Type) into v and validates it.
// Decode failures other than an oversized body become INVALID_REQUEST.
func (m *Validator) Bind(r *http.Request, v interface{}) error {
	if err := render.Decode(r, v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		return apierrors.InvalidRequestWithError(err)
	}
	return m.Struct(v)
}

// fieldPath drops the top-level struct name: "QueryRequest.params.baseDate"
// becomes "params.baseDate".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "daydate":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD or DD-MON-RR)", field)
	case "monthkey":
		return fmt.Sprintf("%s must be a month key (YYYYMM)", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isDayDate(fl validator.FieldLevel) bool {
	_, err := chunking.ParseDay(fl.Field().String())
	return err == nil
}

func isMonthKey(fl validator.FieldLevel) bool {
	_, err := chunking.ParseMonthKey(fl.Field().String())
	return err == nil
}
