package acceptparams

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nateware/accept-params/i18n"
)

// Observer receives the outcome of every Acceptor call: the error code
// ("" on success) and the time spent declaring and validating.
type Observer interface {
	Observe(code Code, elapsed time.Duration)
}

// Acceptor is the validation entry point. It builds a fresh tree per call,
// validates the caller's params and logs every failure once before
// returning it unchanged.
type Acceptor struct {
	logger   zerolog.Logger
	observer Observer
}

// AcceptorOption configures an Acceptor.
type AcceptorOption func(*Acceptor)

// WithLogger sets the logger used when the call context carries none.
func WithLogger(l zerolog.Logger) AcceptorOption { return func(a *Acceptor) { a.logger = l } }

// WithObserver reports every call to o.
func WithObserver(o Observer) AcceptorOption { return func(a *Acceptor) { a.observer = o } }

// NewAcceptor returns an Acceptor logging to stderr unless configured
// otherwise.
func NewAcceptor(opts ...AcceptorOption) *Acceptor {
	a := &Acceptor{logger: zerolog.New(os.Stderr).With().Timestamp().Logger()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Accept declares a tree with declare, merging opts onto the process-wide
// defaults, and validates params against it in place. A nil declare is
// reported as no_params_defined.
func (a *Acceptor) Accept(ctx context.Context, params map[string]any, declare func(*Rules), opts ...Option) error {
	start := time.Now()
	err := accept(params, declare, opts)
	if a.observer != nil {
		a.observer.Observe(CodeOf(err), time.Since(start))
	}
	if err != nil {
		a.logFailure(ctx, err)
	}
	return err
}

// AcceptNone accepts no parameters besides Settings.IgnoreParams.
func (a *Acceptor) AcceptNone(ctx context.Context, params map[string]any, opts ...Option) error {
	return a.Accept(ctx, params, func(*Rules) {}, opts...)
}

// AcceptOnlyID accepts a single required integer "id".
func (a *Acceptor) AcceptOnlyID(ctx context.Context, params map[string]any, opts ...Option) error {
	return a.Accept(ctx, params, func(p *Rules) {
		p.Integer("id", Required())
	}, opts...)
}

func accept(params map[string]any, declare func(*Rules), opts []Option) error {
	if declare == nil {
		return newError(CodeNoParamsDefined, "", i18n.NoParamsDefined)
	}
	rules := NewRules(opts...)
	declare(rules)
	return rules.Validate(params)
}

func (a *Acceptor) logFailure(ctx context.Context, err error) {
	logger := &a.logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		logger = l
	}
	ev := logger.Error().Err(err)
	if e, ok := AsError(err); ok {
		ev = ev.Str("code", string(e.Code))
		if e.Param != "" {
			ev = ev.Str("param", e.Param)
		}
	}
	ev.Msg("Bad request")
}

var std atomic.Pointer[Acceptor]

func init() { std.Store(NewAcceptor()) }

// DefaultAcceptor returns the Acceptor used by the package-level functions.
func DefaultAcceptor() *Acceptor { return std.Load() }

// SetDefaultAcceptor replaces the Acceptor used by the package-level functions.
// Call it during startup.
func SetDefaultAcceptor(a *Acceptor) {
	if a == nil {
		a = NewAcceptor()
	}
	std.Store(a)
}

// Accept validates params with the default Acceptor.
func Accept(ctx context.Context, params map[string]any, declare func(*Rules), opts ...Option) error {
	return DefaultAcceptor().Accept(ctx, params, declare, opts...)
}

// AcceptNone rejects every parameter except Settings.IgnoreParams.
func AcceptNone(ctx context.Context, params map[string]any, opts ...Option) error {
	return DefaultAcceptor().AcceptNone(ctx, params, opts...)
}

// AcceptOnlyID accepts a single required integer "id".
func AcceptOnlyID(ctx context.Context, params map[string]any, opts ...Option) error {
	return DefaultAcceptor().AcceptOnlyID(ctx, params, opts...)
}
