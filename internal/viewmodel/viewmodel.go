// Package viewmodel holds the non-visual state and behaviour behind each
// admin page: RecordList for a collection page, RecordForm for an add or
// edit page.
//
// A view-model owns its state. Callers read it with State, observe it with
// Subscribe, and change it only through the action methods; each action's
// outcome (never user input directly) drives the transition. Errors of
// every kind are caught here and turned into a displayable message.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aanand-mishra/school-admin/internal/http/client"
	"github.com/aanand-mishra/school-admin/internal/types"
)

// API is the backend as the view-models use it. *client.Client implements
// it.
type API interface {
	List(ctx context.Context, res client.Resource) ([]types.Record, error)
	Get(ctx context.Context, res client.Resource, id string) (types.Record, error)
	Create(ctx context.Context, res client.Resource, r types.Record) (types.Record, error)
	Update(ctx context.Context, res client.Resource, id string, r types.Record) (types.Record, error)
	Delete(ctx context.Context, res client.Resource, id string) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Notifier shows the user a message that needs no answer.
type Notifier interface {
	Notify(message string)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(message string)

func (f NotifyFunc) Notify(message string) { f(message) }

// ErrNotConfirmed is returned by RecordList.Remove when the user declined.
var ErrNotConfirmed = errors.New("action not confirmed")

// DefaultRedirectDelay is how long a form shows success before navigating.
const DefaultRedirectDelay = 2 * time.Second

type options struct {
	confirm  Confirmer
	notify   Notifier
	log      *slog.Logger
	delay    time.Duration
	navigate func()
}

// Option configures a view-model.
type Option func(*options)

// WithConfirmer sets who approves deletes. Without one, nothing is
// deleted.
func WithConfirmer(c Confirmer) Option {
	return func(o *options) { o.confirm = c }
}

// WithNotifier sets where alerts go. Without one, they are logged.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notify = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRedirectDelay sets how long a form waits after success before
// calling the navigate callback.
func WithRedirectDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithNavigate sets the callback a form fires to go back to the list.
func WithNavigate(fn func()) Option {
	return func(o *options) { o.navigate = fn }
}

func newOptions(opts []Option) options {
	o := options{
		log:   slog.Default(),
		delay: DefaultRedirectDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.confirm == nil {
		o.confirm = ConfirmFunc(func(string) bool { return false })
	}
	if o.notify == nil {
		log := o.log
		o.notify = NotifyFunc(func(msg string) { log.Info("notice", slog.String("message", msg)) })
	}
	if o.navigate == nil {
		o.navigate = func() {}
	}
	return o
}

// message turns err into text a user can act on. fallback is used for
// transport failures, whose details mean nothing to a user.
func message(err error, fallback string) string {
	var (
		verr *types.ValidationError
		rerr *client.RemoteError
		terr *client.TransportError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &rerr):
		if rerr.Message != "" {
			return rerr.Message
		}
		return rerr.Error()
	case errors.As(err, &terr):
		return fallback
	case errors.Is(err, client.ErrUnsupported):
		return err.Error()
	default:
		return fmt.Sprintf("%s (%v)", fallback, err)
	}
}
