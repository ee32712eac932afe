package middleware

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

var setupOnce sync.Once

// SetupValidator makes validation errors name fields by their JSON tag
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	})
}

// ValidationDetails converts binding errors into per-field details. It
// returns nil when err is not a validator error.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fieldPath(e),
			Message: validationMessage(e),
		})
	}
	return details
}

// fieldPath drops the struct name, e.g. CreateOrderRequest.items[0].product_id
// becomes items[0].product_id
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func validationMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		if isString {
			return "Ensure this field has at least " + e.Param() + " characters."
		}
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "max":
		if isString {
			return "Ensure this field has no more than " + e.Param() + " characters."
		}
		return "Ensure this value is less than or equal to " + e.Param() + "."
	case "gt":
		return "Ensure this value is greater than " + e.Param() + "."
	case "gte":
		return "Ensure this value is greater than or equal to " + e.Param() + "."
	case "oneof":
		return "Must be one of: " + e.Param() + "."
	default:
		return "Invalid value."
	}
}
