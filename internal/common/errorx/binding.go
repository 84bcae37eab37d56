package errorx

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/amoylab/rentmanager/internal/i18n"

	"github.com/go-playground/validator/v10"
)

// FromBinding converts gin binding failures into a VALIDATION_ERROR with
// field-level details.
func FromBinding(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	out := Validation(i18n.MsgValidation)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			id, params := fieldMessage(fe)
			out = out.WithField(fieldPath(fe), id, params)
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "root"
		}
		return out.WithField(field, i18n.FieldType, map[string]any{"Param": typeErr.Type.String()})
	}

	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return out.WithField("root", i18n.FieldDate, nil)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Validation(i18n.MsgInvalidBody).WithCause(err)
	}

	return out.WithField("root", i18n.FieldInvalid, nil).WithCause(err)
}

// fieldPath drops the top-level struct name from the validator namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) (string, map[string]any) {
	params := map[string]any{"Param": fe.Param()}
	switch fe.Tag() {
	case "required":
		return i18n.FieldRequired, nil
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return i18n.FieldLenMin, params
		}
		return i18n.FieldMin, params
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return i18n.FieldLenMax, params
		}
		return i18n.FieldMax, params
	case "gt":
		return i18n.FieldGt, params
	case "email":
		return i18n.FieldEmail, nil
	case "url", "http_url":
		return i18n.FieldURL, nil
	case "uuid", "uuid4":
		return i18n.FieldUUID, nil
	case "vnphone":
		return i18n.FieldPhone, nil
	case "oneof":
		params["Param"] = strings.ReplaceAll(fe.Param(), " ", ", ")
		return i18n.FieldOneOf, params
	default:
		return i18n.FieldInvalid, nil
	}
}
