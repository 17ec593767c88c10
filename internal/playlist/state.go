package playlist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"adreel/internal/logging"
	"adreel/internal/services"
)

// State is a step in the lifecycle of one program build.
type State string

const (
	StateInit          State = "init"
	StateWelcome       State = "welcome"
	StateSegmented     State = "segmented"
	StateAdsSelected   State = "ads_selected"
	StateInterleaved   State = "interleaved"
	StateListed        State = "listed"
	StateConcatenated  State = "concatenated"
	StateOverlaidFinal State = "overlaid_final"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// forward lists the legal successors of each state. Failed is reachable from
// every state that is not terminal and is not listed here.
var forward = map[State][]State{
	StateInit:          {StateWelcome, StateSegmented},
	StateWelcome:       {StateSegmented},
	StateSegmented:     {StateAdsSelected},
	StateAdsSelected:   {StateInterleaved},
	StateInterleaved:   {StateListed},
	StateListed:        {StateConcatenated},
	StateConcatenated:  {StateOverlaidFinal},
	StateOverlaidFinal: {StateDone},
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// CanTransition reports whether from -> to is legal.
func CanTransition(from, to State) bool {
	if to == StateFailed {
		return !from.Terminal()
	}
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionFunc observes state changes.
type TransitionFunc func(from, to State)

// Tracker records the state of one build and logs every transition.
type Tracker struct {
	mu       sync.Mutex
	state    State
	history  []State
	logger   *slog.Logger
	observer TransitionFunc
}

// NewTracker returns a tracker in StateInit. observer may be nil.
func NewTracker(logger *slog.Logger, observer TransitionFunc) *Tracker {
	return &Tracker{
		state:    StateInit,
		history:  []State{StateInit},
		logger:   logging.NewComponentLogger(logger, "playlist"),
		observer: observer,
	}
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// History returns every state entered, in order.
func (t *Tracker) History() []State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]State(nil), t.history...)
}

// Advance moves to the next state.
func (t *Tracker) Advance(ctx context.Context, to State) error {
	if to == StateFailed {
		return services.Wrap(services.ErrValidation, "playlist", "advance", "use Fail to enter the failed state", nil)
	}
	return t.move(ctx, to, nil)
}

// Fail moves to StateFailed and records err. Failing a finished tracker is a
// no-op.
func (t *Tracker) Fail(ctx context.Context, err error) {
	_ = t.move(ctx, StateFailed, err)
}

func (t *Tracker) move(ctx context.Context, to State, cause error) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	from := t.state
	if !CanTransition(from, to) {
		t.mu.Unlock()
		if to == StateFailed {
			return nil
		}
		return services.Wrap(services.ErrValidation, "playlist", "advance", fmt.Sprintf("illegal transition %s -> %s", from, to), nil)
	}
	t.state = to
	t.history = append(t.history, to)
	observer := t.observer
	t.mu.Unlock()

	logger := logging.WithContext(ctx, t.logger)
	if to == StateFailed {
		logger.Error("playlist build failed",
			logging.String("from", string(from)),
			logging.Error(cause),
		)
	} else {
		logger.Info("playlist state changed",
			logging.String("from", string(from)),
			logging.String("to", string(to)),
		)
	}
	if observer != nil {
		observer(from, to)
	}
	return nil
}
