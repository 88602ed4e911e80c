package types_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-admin/internal/types"
)

func TestAgeUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    types.Age
		wantErr bool
	}{
		{name: "number", in: `12`, want: 12},
		{name: "numeric string", in: `"12"`, want: 12},
		{name: "float with no fraction", in: `12.0`, want: 12},
		{name: "empty string", in: `""`, want: 0},
		{name: "null", in: `null`, want: 0},
		{name: "fraction", in: `12.5`, wantErr: true},
		{name: "word", in: `"twelve"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a types.Age
			err := json.Unmarshal([]byte(tt.in), &a)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, a)
		})
	}
}

func TestRecordJSON(t *testing.T) {
	var r types.Record
	err := json.Unmarshal([]byte(`{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":"12"}`), &r)
	require.NoError(t, err)
	require.Equal(t, types.Record{ID: "a1", FullName: "Ada", Class: "5", Gender: "Female", Age: 12}, r)

	// An unsaved record has no _id on the wire.
	b, err := json.Marshal(types.Record{FullName: "Ada", Class: "5", Gender: "Female", Age: 12})
	require.NoError(t, err)
	require.JSONEq(t, `{"fullname":"Ada","class":"5","gender":"Female","age":12}`, string(b))
}

func TestDraftRecord(t *testing.T) {
	full := types.Draft{FullName: "Ada", Class: "5", Gender: "Female", Age: "12"}

	r, err := full.Record("a1")
	require.NoError(t, err)
	require.Equal(t, types.Record{ID: "a1", FullName: "Ada", Class: "5", Gender: "Female", Age: 12}, r)

	tests := []struct {
		name   string
		edit   func(d *types.Draft)
		fields []string
	}{
		{name: "no name", edit: func(d *types.Draft) { d.FullName = "" }, fields: []string{"fullname"}},
		{name: "no class", edit: func(d *types.Draft) { d.Class = "" }, fields: []string{"class"}},
		{name: "no gender", edit: func(d *types.Draft) { d.Gender = " " }, fields: []string{"gender"}},
		{name: "no age", edit: func(d *types.Draft) { d.Age = "" }, fields: []string{"age"}},
		{name: "zero age", edit: func(d *types.Draft) { d.Age = "0" }, fields: []string{"age"}},
		{name: "empty", edit: func(d *types.Draft) { *d = types.Draft{} }, fields: []string{"fullname", "class", "gender", "age"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := full
			tt.edit(&d)

			_, err := d.Record("")
			var verr *types.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Equal(t, tt.fields, verr.Fields)
			require.Equal(t, types.MsgFillAllFields, verr.Message)
		})
	}
}

func TestDraftRecord_AgeNotNumber(t *testing.T) {
	_, err := types.Draft{FullName: "Ada", Class: "5", Gender: "Female", Age: "old"}.Record("")

	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, []string{"age"}, verr.Fields)
}

func TestDraftOf(t *testing.T) {
	d := types.DraftOf(types.Record{ID: "a1", FullName: "Ada", Class: "5", Gender: "Female", Age: 12})
	require.Equal(t, types.Draft{FullName: "Ada", Class: "5", Gender: "Female", Age: "12"}, d)

	require.Equal(t, "", types.DraftOf(types.Record{}).Age)
}

func TestValidate(t *testing.T) {
	ok := types.Record{FullName: "Ada", Class: "10", Gender: "Other", Age: 25}
	require.NoError(t, types.Validate(ok))

	bad := types.Record{FullName: "Ada", Class: "11", Gender: "Robot", Age: 26}
	err := types.Validate(bad)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	var fields []string
	for _, e := range verrs {
		fields = append(fields, e.Field())
	}
	require.Equal(t, []string{"class", "gender", "age"}, fields)
}

func TestKind(t *testing.T) {
	require.Equal(t, "Student", types.KindStudent.Title())
	require.Equal(t, "teachers", types.KindTeacher.Plural())
	require.Equal(t, "Teacher ID is missing", types.MissingID(types.KindTeacher).Error())
}
