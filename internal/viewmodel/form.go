package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/school-admin/internal/http/client"
	"github.com/aanand-mishra/school-admin/internal/types"
	"github.com/aanand-mishra/school-admin/internal/utils/response"
)

// Status is where a form is in its current submission attempt.
// Transitions are linear: idle → submitting → succeeded | failed.
// Validation failures go straight to failed. A succeeded form returns to
// idle when it navigates.
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Mode tells an add form from an edit form.
type Mode int

const (
	ModeAdd Mode = iota
	ModeEdit
)

// Field names a draft field by its wire name.
type Field string

const (
	FieldFullName Field = "fullname"
	FieldClass    Field = "class"
	FieldGender   Field = "gender"
	FieldAge      Field = "age"
)

// FormState is a snapshot of a form.
type FormState struct {
	Status Status
	Draft  types.Draft
	// Loading is true while an edit form fetches its record.
	Loading bool
	Err     string
}

// RecordForm holds the draft of an add or edit page and submits it.
type RecordForm struct {
	api  API
	res  client.Resource
	mode Mode
	opt  options

	mu        sync.Mutex
	id        string
	state     FormState
	baseline  types.Draft
	timer     *time.Timer
	listeners []func(FormState)
}

// NewAddForm returns an empty add form.
func NewAddForm(api API, res client.Resource, opts ...Option) *RecordForm {
	return &RecordForm{
		api:  api,
		res:  res,
		mode: ModeAdd,
		opt:  newOptions(opts),
	}
}

// OpenEditForm returns an edit form for id and loads the record into it.
// The form is returned even when loading fails; its state carries the
// message and the error is returned alongside.
func OpenEditForm(ctx context.Context, api API, res client.Resource, id string, opts ...Option) (*RecordForm, error) {
	f := &RecordForm{
		api:  api,
		res:  res,
		mode: ModeEdit,
		opt:  newOptions(opts),
		id:   id,
	}
	return f, f.LoadExisting(ctx, id)
}

// Mode reports whether this is an add or edit form.
func (f *RecordForm) Mode() Mode {
	return f.mode
}

// State returns a snapshot of the form.
func (f *RecordForm) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns the current draft.
func (f *RecordForm) Draft() types.Draft {
	return f.State().Draft
}

// Subscribe registers fn to be called with every new state.
func (f *RecordForm) Subscribe(fn func(FormState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// Set changes one draft field.
func (f *RecordForm) Set(field Field, value string) error {
	return f.update(func(s *FormState) error {
		switch field {
		case FieldFullName:
			s.Draft.FullName = value
		case FieldClass:
			s.Draft.Class = value
		case FieldGender:
			s.Draft.Gender = value
		case FieldAge:
			s.Draft.Age = value
		default:
			return fmt.Errorf("unknown field %q", field)
		}
		return nil
	})
}

// Reset restores the draft: empty for an add form, the last fetched
// values for an edit form.
func (f *RecordForm) Reset() {
	_ = f.update(func(s *FormState) error {
		s.Draft = f.baseline
		s.Err = ""
		return nil
	})
}

// LoadExisting fetches the record with id into the draft and makes it the
// Reset baseline.
func (f *RecordForm) LoadExisting(ctx context.Context, id string) error {
	if id == "" {
		err := types.MissingID(f.res.Kind)
		f.opt.notify.Notify(err.Message)
		_ = f.update(func(s *FormState) error { s.Err = err.Message; return nil })
		return err
	}

	_ = f.update(func(s *FormState) error { s.Loading = true; return nil })

	r, err := f.api.Get(ctx, f.res, id)
	if err != nil {
		msg := fmt.Sprintf("Failed to fetch %s", f.res.Kind)
		if errors.Is(err, client.ErrNotFound) {
			msg = fmt.Sprintf("%s not found", f.res.Kind.Title())
		} else if errors.Is(err, client.ErrUnsupported) {
			msg = err.Error()
		}
		f.opt.log.Error("error fetching record",
			slog.String("kind", string(f.res.Kind)),
			slog.String("id", id),
			slog.String("error", err.Error()))

		_ = f.update(func(s *FormState) error {
			s.Loading = false
			s.Err = msg
			return nil
		})
		return err
	}

	if r.ID == "" {
		r.ID = id
	}

	f.mu.Lock()
	f.id = r.ID
	f.baseline = types.DraftOf(r)
	f.mu.Unlock()

	return f.update(func(s *FormState) error {
		s.Loading = false
		s.Draft = types.DraftOf(r)
		s.Err = ""
		return nil
	})
}

// Submit validates the draft and sends one create (add) or update (edit)
// request.
//
// A draft with an empty field, or a value the backend would refuse, is
// rejected with a *types.ValidationError and no request. A backend
// rejection leaves the draft intact. On success the add draft is cleared
// and, after the redirect delay, the navigate callback fires.
func (f *RecordForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	draft, id := f.state.Draft, f.id
	f.mu.Unlock()

	rec, err := f.validate(draft, id)
	if err != nil {
		f.opt.notify.Notify(err.Error())
		f.fail(err.Error())
		return err
	}

	_ = f.update(func(s *FormState) error {
		s.Status = StatusSubmitting
		s.Err = ""
		return nil
	})

	if f.mode == ModeAdd {
		_, err = f.api.Create(ctx, f.res, rec)
	} else {
		_, err = f.api.Update(ctx, f.res, id, rec)
	}
	if err != nil {
		f.opt.log.Error("error submitting record",
			slog.String("kind", string(f.res.Kind)),
			slog.String("error", err.Error()))
		f.fail(message(err, f.transportMessage()))
		return err
	}

	f.opt.log.Info("record submitted", slog.String("kind", string(f.res.Kind)))

	_ = f.update(func(s *FormState) error {
		s.Status = StatusSucceeded
		s.Err = ""
		if f.mode == ModeAdd {
			s.Draft = types.Draft{}
		}
		return nil
	})

	f.scheduleNavigate()
	return nil
}

// Close stops a pending navigation.
func (f *RecordForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *RecordForm) validate(d types.Draft, id string) (types.Record, error) {
	if f.mode == ModeEdit && id == "" {
		return types.Record{}, types.MissingID(f.res.Kind)
	}

	rec, err := d.Record(id)
	if err != nil {
		return types.Record{}, err
	}

	if err := types.Validate(rec); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return types.Record{}, err
		}
		fields := make([]string, 0, len(validateErrs))
		for _, e := range validateErrs {
			fields = append(fields, e.Field())
		}
		return types.Record{}, &types.ValidationError{
			Fields:  fields,
			Message: response.ValidationError(validateErrs).Error,
		}
	}
	return rec, nil
}

func (f *RecordForm) transportMessage() string {
	if f.mode == ModeAdd {
		return fmt.Sprintf("Failed to submit %s data. Please check if the backend server is running.", f.res.Kind)
	}
	return fmt.Sprintf("Failed to update %s data.", f.res.Kind)
}

func (f *RecordForm) fail(msg string) {
	_ = f.update(func(s *FormState) error {
		s.Status = StatusFailed
		s.Err = msg
		return nil
	})
}

func (f *RecordForm) scheduleNavigate() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.opt.delay, func() {
		_ = f.update(func(s *FormState) error {
			if s.Status == StatusSucceeded {
				s.Status = StatusIdle
			}
			return nil
		})
		f.opt.navigate()
	})
}

// update applies fn to the state under the lock and, if fn succeeds,
// tells the listeners.
func (f *RecordForm) update(fn func(s *FormState) error) error {
	f.mu.Lock()
	next := f.state
	if err := fn(&next); err != nil {
		f.mu.Unlock()
		return err
	}
	f.state = next
	listeners := slices.Clone(f.listeners)
	f.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return nil
}
