package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError turns validator output into a BadRequest whose message
// names each offending field by its JSON name.
func validationError(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("invalid request: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &Error{Kind: KindBadRequest, Message: strings.Join(msgs, "; "), Err: err}
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "required_without":
		return fmt.Sprintf("%s is required when %s is missing", name, jsonName(fe.Param()))
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", name, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
}

// jsonName maps a Go field name used as a tag parameter onto its JSON name
// ("RoomNumber" -> "roomNumber", "RoomID" -> "roomId").
func jsonName(field string) string {
	if field == "" {
		return field
	}
	field = strings.Replace(field, "ID", "Id", 1)
	return strings.ToLower(field[:1]) + field[1:]
}
