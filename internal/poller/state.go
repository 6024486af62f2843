// Package poller keeps a client's view of one conversation fresh by polling the chat
// endpoint. Reduce holds every transition; Poller executes the resulting effects.
package poller

import (
	"errors"
	"strings"
	"time"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/models"
)

// PollInterval is the period of the refresh timer armed on selection.
const PollInterval = 3 * time.Second

var (
	ErrNoConversation = errors.New("no conversation selected")
	ErrSendInFlight   = errors.New("a message is already being sent")
)

type Status int

const (
	Idle Status = iota
	Fetching
	Sending
)

func (s Status) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Sending:
		return "sending"
	default:
		return "idle"
	}
}

// State is the whole client-side view. Values are treated as immutable: Reduce returns
// a new State and never writes through the Messages map it was given.
type State struct {
	Selected   uint   // counterpart user id, 0 when nothing is selected
	Generation uint64 // bumped on every selection change
	Fetching   bool
	Sending    bool
	TimerArmed bool
	// RefetchPending marks a send that completed while a fetch was in flight. The
	// answer to that fetch may predate the new message, so another fetch follows it.
	RefetchPending bool
	Messages       map[uint][]models.Message
	Err            error
	LoggedOut      bool
}

// Status derives the coarse state; a pending send wins over a pending fetch.
func (s State) Status() Status {
	switch {
	case s.Sending:
		return Sending
	case s.Fetching:
		return Fetching
	default:
		return Idle
	}
}

// Current returns the cached messages of the selected conversation.
func (s State) Current() []models.Message {
	return s.Messages[s.Selected]
}

func (s State) withMessages(id uint, messages []models.Message) State {
	next := make(map[uint][]models.Message, len(s.Messages)+1)
	for k, v := range s.Messages {
		next[k] = v
	}
	if messages == nil {
		messages = []models.Message{}
	}
	next[id] = messages
	s.Messages = next
	return s
}

type Event interface{ isEvent() }

type (
	Select   struct{ ID uint }
	Deselect struct{}
	Tick     struct{}
	Refresh  struct{}
	Send     struct{ Content string }

	FetchDone struct {
		ID       uint
		Gen      uint64
		Messages []models.Message
		Err      error
	}

	SendDone struct {
		ID      uint
		Gen     uint64
		Message *models.Message
		Err     error
	}
)

func (Select) isEvent()    {}
func (Deselect) isEvent()  {}
func (Tick) isEvent()      {}
func (Refresh) isEvent()   {}
func (Send) isEvent()      {}
func (FetchDone) isEvent() {}
func (SendDone) isEvent()  {}

type Effect interface{ isEffect() }

type (
	ArmTimer    struct{ Period time.Duration }
	DisarmTimer struct{}
	Fetch       struct {
		ID  uint
		Gen uint64
	}
	Post struct {
		ID      uint
		Gen     uint64
		Content string
	}
	ClearSession  struct{}
	RedirectLogin struct{}
)

func (ArmTimer) isEffect()      {}
func (DisarmTimer) isEffect()   {}
func (Fetch) isEffect()         {}
func (Post) isEffect()          {}
func (ClearSession) isEffect()  {}
func (RedirectLogin) isEffect() {}

// Reduce applies one event. It has no side effects; everything the caller must do is
// returned as effects, in order.
func Reduce(s State, ev Event) (State, []Effect) {
	if s.LoggedOut {
		return s, nil
	}

	switch ev := ev.(type) {
	case Select:
		if ev.ID == 0 {
			return Reduce(s, Deselect{})
		}
		if ev.ID == s.Selected {
			return s, nil
		}
		var effects []Effect
		if s.TimerArmed {
			effects = append(effects, DisarmTimer{})
		}
		s.Generation++
		s.Selected = ev.ID
		s.Fetching = true
		s.Sending = false
		s.RefetchPending = false
		s.Err = nil
		s.TimerArmed = true
		return s, append(effects,
			Fetch{ID: s.Selected, Gen: s.Generation},
			ArmTimer{Period: PollInterval},
		)

	case Deselect:
		var effects []Effect
		if s.TimerArmed {
			effects = append(effects, DisarmTimer{})
		}
		if s.Selected != 0 {
			s.Generation++
		}
		s.Selected = 0
		s.Fetching = false
		s.Sending = false
		s.RefetchPending = false
		s.Err = nil
		s.TimerArmed = false
		return s, effects

	case Tick, Refresh:
		if s.Selected == 0 || s.Fetching || s.Sending {
			return s, nil
		}
		s.Fetching = true
		return s, []Effect{Fetch{ID: s.Selected, Gen: s.Generation}}

	case Send:
		switch {
		case s.Selected == 0:
			s.Err = ErrNoConversation
			return s, nil
		case strings.TrimSpace(ev.Content) == "":
			s.Err = apperrors.Validation("content", "must not be empty")
			return s, nil
		case s.Sending:
			s.Err = ErrSendInFlight
			return s, nil
		}
		s.Sending = true
		s.Err = nil
		return s, []Effect{Post{ID: s.Selected, Gen: s.Generation, Content: ev.Content}}

	case FetchDone:
		if ev.Gen != s.Generation || ev.ID != s.Selected {
			return s, nil
		}
		s.Fetching = false
		pending := s.RefetchPending
		s.RefetchPending = false
		if ev.Err != nil {
			return failed(s, ev.Err)
		}
		s = s.withMessages(ev.ID, ev.Messages)
		s.Err = nil
		if pending {
			s.Fetching = true
			return s, []Effect{Fetch{ID: s.Selected, Gen: s.Generation}}
		}
		return s, nil

	case SendDone:
		if ev.Gen != s.Generation || ev.ID != s.Selected {
			return s, nil
		}
		s.Sending = false
		if ev.Err != nil {
			return failed(s, ev.Err)
		}
		s.Err = nil
		if s.Fetching {
			s.RefetchPending = true
			return s, nil
		}
		s.Fetching = true
		return s, []Effect{Fetch{ID: s.Selected, Gen: s.Generation}}
	}

	return s, nil
}

// failed records a request error. Auth failures end the session; anything else is shown
// inline and left for the next tick to retry.
func failed(s State, err error) (State, []Effect) {
	if apperrors.IsAuth(err) {
		return State{
				Generation: s.Generation + 1,
				Messages:   map[uint][]models.Message{},
				LoggedOut:  true,
			}, []Effect{
				DisarmTimer{},
				ClearSession{},
				RedirectLogin{},
			}
	}
	s.Err = err
	return s, nil
}
