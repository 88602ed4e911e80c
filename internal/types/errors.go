package types

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MsgFillAllFields is shown when a form is submitted with an empty field.
const MsgFillAllFields = "Please fill in all fields"

// ValidationError is a client-side rejection: a required field or the
// record identifier is missing, or a field holds a value the backend would
// not accept. No request is sent when one is returned.
type ValidationError struct {
	// Fields holds the wire names of the offending fields.
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// MissingID reports an operation attempted on a record without an id.
func MissingID(kind Kind) *ValidationError {
	return &ValidationError{
		Fields:  []string{"_id"},
		Message: fmt.Sprintf("%s ID is missing", kind.Title()),
	}
}

// validate reports field errors by their json names ("fullname", not
// "FullName") so messages line up with the wire format.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks the validate:"..." tags on r. It returns nil or a
// validator.ValidationErrors.
func Validate(r Record) error {
	return validate.Struct(r)
}
