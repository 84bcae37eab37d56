package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/amoylab/rentmanager/internal/common/dto"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// vnPhone matches Vietnamese mobile numbers in local or +84 form
var vnPhone = regexp.MustCompile(`^(0|\+84)(3|5|7|8|9)[0-9]{8}$`)

// Register installs the custom rules on gin's binding validator
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return Configure(v)
}

// Configure reports fields by their json names, teaches the validator to
// see through dto.Optional and adds the vnphone rule.
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(optionalValue,
		dto.Optional[string]{},
		dto.Optional[float64]{},
		dto.Optional[time.Time]{},
	)
	return v.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
		return IsVNPhone(fl.Field().String())
	})
}

func IsVNPhone(s string) bool {
	return vnPhone.MatchString(s)
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

type validationValuer interface {
	ValidationValue() any
}

func optionalValue(field reflect.Value) any {
	if vv, ok := field.Interface().(validationValuer); ok {
		return vv.ValidationValue()
	}
	return nil
}
