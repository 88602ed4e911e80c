package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aanand-mishra/school-admin/internal/http/client"
	"github.com/aanand-mishra/school-admin/internal/types"
)

// Phase tags which variant of ListState holds.
type Phase int

const (
	Loading Phase = iota
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ListState is Loading, Loaded(Records) or Failed(Err). Records is empty
// (never nil) unless Phase is Loaded.
type ListState struct {
	Phase   Phase
	Records []types.Record
	Err     string
}

// RecordList fetches and presents one kind's collection and mediates
// deletes. The collection is a cache rebuilt from the backend after every
// mutation.
type RecordList struct {
	api API
	res client.Resource
	opt options

	mu        sync.Mutex
	state     ListState
	listeners []func(ListState)
}

// NewRecordList returns a list in the Loading state. Call Load to fetch.
func NewRecordList(api API, res client.Resource, opts ...Option) *RecordList {
	return &RecordList{
		api:   api,
		res:   res,
		opt:   newOptions(opts),
		state: ListState{Phase: Loading, Records: []types.Record{}},
	}
}

// Kind is the record kind the list shows.
func (l *RecordList) Kind() types.Kind {
	return l.res.Kind
}

// State returns a snapshot of the current state.
func (l *RecordList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return snapshot(l.state)
}

// Subscribe registers fn to be called with every new state.
func (l *RecordList) Subscribe(fn func(ListState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Load issues exactly one collection request and returns the resulting
// state, Loaded or Failed.
func (l *RecordList) Load(ctx context.Context) ListState {
	l.set(ListState{Phase: Loading, Records: []types.Record{}})

	records, err := l.api.List(ctx, l.res)
	if err != nil {
		l.opt.log.Error("error fetching records",
			slog.String("kind", string(l.res.Kind)),
			slog.String("error", err.Error()))

		return l.set(ListState{
			Phase:   Failed,
			Records: []types.Record{},
			Err: message(err, fmt.Sprintf(
				"Failed to fetch %s data. Please check if the backend server is running.", l.res.Kind)),
		})
	}

	if records == nil {
		records = []types.Record{}
	}
	return l.set(ListState{Phase: Loaded, Records: records})
}

// Remove deletes the record with id after the user confirms, then reloads
// the collection once.
//
// An empty id is rejected with a *types.ValidationError and no request.
// A declined confirmation returns ErrNotConfirmed. A failed delete is
// reported through the Notifier and leaves the state untouched.
func (l *RecordList) Remove(ctx context.Context, id string) error {
	if id == "" {
		err := types.MissingID(l.res.Kind)
		l.opt.notify.Notify(err.Message)
		return err
	}

	if !l.opt.confirm.Confirm(fmt.Sprintf("Are you sure you want to delete this %s?", l.res.Kind)) {
		return ErrNotConfirmed
	}

	if err := l.api.Delete(ctx, l.res, id); err != nil {
		l.opt.log.Error("error deleting record",
			slog.String("kind", string(l.res.Kind)),
			slog.String("id", id),
			slog.String("error", err.Error()))

		msg := fmt.Sprintf("Failed to delete %s. Please try again.", l.res.Kind)
		if errors.Is(err, client.ErrUnsupported) {
			msg = err.Error()
		}
		l.opt.notify.Notify(msg)
		return err
	}

	l.opt.log.Info("record deleted",
		slog.String("kind", string(l.res.Kind)),
		slog.String("id", id))

	l.Load(ctx)
	return nil
}

func (l *RecordList) set(s ListState) ListState {
	l.mu.Lock()
	l.state = s
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot(s))
	}
	return snapshot(s)
}

func snapshot(s ListState) ListState {
	s.Records = append(make([]types.Record, 0, len(s.Records)), s.Records...)
	return s
}
