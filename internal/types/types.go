// Package types holds the shared data structures used across the
// application. Handlers, storage, the API client and the view-models all
// import types without depending on each other.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind names a record type exchanged with the backend.
type Kind string

const (
	KindStudent Kind = "student"
	KindTeacher Kind = "teacher"
)

// Title returns the kind capitalised for messages, e.g. "Student".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Plural returns the lower-case plural, e.g. "students".
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Record is a student or teacher as exchanged with the backend.
//
// Struct tags:
//
//  1. json:"..."    : wire names used by the backend. The identifier is
//     `_id` and stays empty until the backend has persisted the record.
//
//  2. validate:"...": rules checked by go-playground/validator before a
//     record is submitted (see Validate).
type Record struct {
	ID       string `json:"_id,omitempty"`
	FullName string `json:"fullname" validate:"required"`
	Class    string `json:"class"    validate:"required,oneof=1 2 3 4 5 6 7 8 9 10"`
	Gender   string `json:"gender"   validate:"required,oneof=Male Female Other"`
	Age      Age    `json:"age"      validate:"required,min=1,max=25"`
}

// Age is a record's age in years. Zero means absent.
//
// The backend is not consistent about the JSON type: it may send a number
// (12), a numeric string ("12"), an empty string or null. All of them
// decode here.
type Age int

// UnmarshalJSON accepts a number, a numeric string, "" or null.
func (a *Age) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		*a = 0
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("age %q is not a number", s)
	}
	if f != float64(int(f)) {
		return fmt.Errorf("age %q is not a whole number", s)
	}

	*a = Age(int(f))
	return nil
}

// Draft is the field state of an add/edit form, held exactly as typed.
type Draft struct {
	FullName string
	Class    string
	Gender   string
	Age      string
}

// DraftOf returns the draft a form shows for an existing record.
func DraftOf(r Record) Draft {
	d := Draft{
		FullName: r.FullName,
		Class:    r.Class,
		Gender:   r.Gender,
	}
	if r.Age != 0 {
		d.Age = strconv.Itoa(int(r.Age))
	}
	return d
}

// Missing returns the wire names of the required fields left empty.
func (d Draft) Missing() []string {
	var missing []string
	if strings.TrimSpace(d.FullName) == "" {
		missing = append(missing, "fullname")
	}
	if strings.TrimSpace(d.Class) == "" {
		missing = append(missing, "class")
	}
	if strings.TrimSpace(d.Gender) == "" {
		missing = append(missing, "gender")
	}
	if age := strings.TrimSpace(d.Age); age == "" || isZero(age) {
		missing = append(missing, "age")
	}
	return missing
}

// isZero reports whether s is a number equal to zero. A zero age counts as
// not given.
func isZero(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n == 0
}

// Record converts the draft into a record carrying id.
// It checks presence of all four fields and that age is a whole number;
// enumerations and ranges are left to Validate.
func (d Draft) Record(id string) (Record, error) {
	if missing := d.Missing(); len(missing) > 0 {
		return Record{}, &ValidationError{Fields: missing, Message: MsgFillAllFields}
	}

	age, err := strconv.Atoi(strings.TrimSpace(d.Age))
	if err != nil {
		return Record{}, &ValidationError{
			Fields:  []string{"age"},
			Message: "field age must be a number",
		}
	}

	return Record{
		ID:       id,
		FullName: strings.TrimSpace(d.FullName),
		Class:    strings.TrimSpace(d.Class),
		Gender:   strings.TrimSpace(d.Gender),
		Age:      Age(age),
	}, nil
}
