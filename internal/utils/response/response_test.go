package response_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-admin/internal/types"
	"github.com/aanand-mishra/school-admin/internal/utils/response"
)

var ada = types.Record{ID: "a1", FullName: "Ada", Class: "5", Gender: "Female", Age: 12}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []types.Record
	}{
		{name: "bare array", body: `[{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":12}]`, want: []types.Record{ada}},
		{name: "envelope", body: `{"data":[{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":12}]}`, want: []types.Record{ada}},
		{name: "envelope with string age", body: ` {"data":[{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":"12"}]}`, want: []types.Record{ada}},
		{name: "empty array", body: `[]`, want: []types.Record{}},
		{name: "object without data", body: `{"count":0}`, want: []types.Record{}},
		{name: "null data", body: `{"data":null}`, want: []types.Record{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := response.DecodeList([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeList_Errors(t *testing.T) {
	for _, body := range []string{``, `42`, `"students"`, `{"data":{"_id":"a1"}}`, `[{"age":"old"}]`, `{not json`} {
		_, err := response.DecodeList([]byte(body))
		require.Error(t, err, "body %q", body)
	}
}

func TestDecodeOne(t *testing.T) {
	const obj = `{"_id":"a1","fullname":"Ada","class":"5","gender":"Female","age":12}`

	tests := []struct {
		name string
		body string
	}{
		{name: "bare array", body: `[` + obj + `,{"_id":"b2","fullname":"Bob"}]`},
		{name: "envelope array", body: `{"data":[` + obj + `]}`},
		{name: "envelope object", body: `{"data":` + obj + `}`},
		{name: "raw object", body: obj},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := response.DecodeOne([]byte(tt.body))
			require.NoError(t, err)
			require.Equal(t, ada, got)
		})
	}
}

func TestDecodeOne_NoRecord(t *testing.T) {
	for _, body := range []string{`[]`, `null`, `{}`, `{"data":[]}`, `{"data":{}}`, `{"error":"not found"}`} {
		_, err := response.DecodeOne([]byte(body))
		require.ErrorIs(t, err, response.ErrNoRecord, "body %q", body)
	}
}

func TestDecodeOne_Malformed(t *testing.T) {
	_, err := response.DecodeOne([]byte(`{"_id":`))
	require.Error(t, err)
	require.False(t, errors.Is(err, response.ErrNoRecord))
}

func TestErrorMessage(t *testing.T) {
	require.Equal(t, "boom", response.ErrorMessage([]byte(`{"status":"error","error":"boom"}`)))
	require.Equal(t, "nope", response.ErrorMessage([]byte(`{"message":"nope"}`)))
	require.Equal(t, "", response.ErrorMessage([]byte(`<html>oops</html>`)))
	require.Equal(t, "", response.ErrorMessage([]byte(`[]`)))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := response.WriteJSON(rec, http.StatusBadRequest, response.GeneralError(errors.New("bad")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"status":"error","error":"bad"}`, rec.Body.String())
}

func TestValidationError(t *testing.T) {
	err := types.Validate(types.Record{Class: "11", Gender: "Female", Age: 30})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	resp := response.ValidationError(verrs)
	require.Equal(t, response.StatusError, resp.Status)
	require.Equal(t,
		"field fullname is required, field class must be one of: 1 2 3 4 5 6 7 8 9 10, field age must be at most 25",
		resp.Error)
}
