// Package record contains the HTTP handlers of the local stub backend.
//
// Each exported function is a factory: it receives its dependencies
// (storage and the record kind) once at startup and returns the handler
// the router calls on every request.
//
//	mux.HandleFunc("GET /getTeachers", record.GetList(storage, types.KindTeacher, true))
package record

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/school-admin/internal/http/middleware"
	"github.com/aanand-mishra/school-admin/internal/storage"
	"github.com/aanand-mishra/school-admin/internal/types"
	"github.com/aanand-mishra/school-admin/internal/utils/response"
)

// Register adds the backend route table to mux:
//
//	GET    /getStudentsData        → bare array of students
//	GET    /getStudentsData/{id}   → [ student ] (empty array if absent)
//	POST   /postStudentsData       → 201 with the created student
//	PUT    /updateStudent/{id}     → the updated student
//	DELETE /deleteStudent/{id}     → { "status": "deleted" }
//	GET    /getTeachers            → { "data": [ teachers ] }
//	DELETE /deleteTeacher/{id}     → { "status": "deleted" }
//	GET    /metrics                → Prometheus metrics
func Register(mux *http.ServeMux, s storage.Storage, m *middleware.Metrics) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, m.Instrument(pattern, h))
	}

	handle("GET /getStudentsData", GetList(s, types.KindStudent, false))
	handle("GET /getStudentsData/{id}", GetByID(s, types.KindStudent))
	handle("POST /postStudentsData", New(s, types.KindStudent))
	handle("PUT /updateStudent/{id}", Update(s, types.KindStudent))
	handle("DELETE /deleteStudent/{id}", Delete(s, types.KindStudent))

	handle("GET /getTeachers", GetList(s, types.KindTeacher, true))
	handle("DELETE /deleteTeacher/{id}", Delete(s, types.KindTeacher))

	mux.Handle("GET /metrics", m.Handler())
}

// New handles record creation from the JSON request body.
//
// Request body (JSON):
//
//	{ "fullname": "Ada", "class": "5", "gender": "Female", "age": 12 }
//
// Success response (201 Created): the record with its new _id.
//
// Error responses:
//
//	400 Bad Request : empty body, malformed JSON, or failed validation
//	500 Internal    : database error
func New(s storage.Storage, kind types.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a record", slog.String("kind", string(kind)))

		rec, ok := decode(w, r)
		if !ok {
			return
		}

		created, err := s.Create(kind, rec)
		if err != nil {
			slog.Error("error creating record",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("record created", slog.String("kind", string(kind)), slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID returns a one-element array holding the record, or an empty
// array when no record has the id.
func GetByID(s storage.Storage, kind types.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a record", slog.String("kind", string(kind)), slog.String("id", id))

		rec, err := s.GetByID(kind, id)
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteJSON(w, http.StatusOK, []types.Record{})
			return
		}
		if err != nil {
			slog.Error("error getting record",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, []types.Record{rec})
	}
}

// GetList returns every record of the kind, as a bare array or, with
// wrap, inside a { "data": [...] } envelope.
func GetList(s storage.Storage, kind types.Kind, wrap bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all records", slog.String("kind", string(kind)))

		records, err := s.List(kind)
		if err != nil {
			slog.Error("error getting records", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if wrap {
			response.WriteJSON(w, http.StatusOK, map[string]any{"data": records})
			return
		}
		response.WriteJSON(w, http.StatusOK, records)
	}
}

// Update replaces all fields of an existing record.
//
// Error responses:
//
//	400 Bad Request : empty body, malformed JSON, or failed validation
//	404 Not Found   : no record has the id
//	500 Internal    : database error
func Update(s storage.Storage, kind types.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a record", slog.String("kind", string(kind)), slog.String("id", id))

		rec, ok := decode(w, r)
		if !ok {
			return
		}

		updated, err := s.Update(kind, id, rec)
		if err != nil {
			slog.Error("error updating record",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, statusFor(err), response.GeneralError(err))
			return
		}

		slog.Info("record updated", slog.String("kind", string(kind)), slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete permanently removes a record.
//
// Success response (200 OK):
//
//	{ "status": "deleted" }
func Delete(s storage.Storage, kind types.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a record", slog.String("kind", string(kind)), slog.String("id", id))

		if err := s.Delete(kind, id); err != nil {
			slog.Error("error deleting record",
				slog.String("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, statusFor(err), response.GeneralError(err))
			return
		}

		slog.Info("record deleted", slog.String("kind", string(kind)), slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// decode reads and validates a record from the body. On failure it has
// already written the 400 response.
func decode(w http.ResponseWriter, r *http.Request) (types.Record, bool) {
	var rec types.Record

	err := json.NewDecoder(r.Body).Decode(&rec)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return types.Record{}, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return types.Record{}, false
	}

	if err := types.Validate(rec); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return types.Record{}, false
	}

	return rec, true
}

func statusFor(err error) int {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
