package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/session"
)

// ChatAPI is the part of the HTTP client the poller needs.
type ChatAPI interface {
	GetMessages(ctx context.Context, otherUserID uint) ([]models.Message, error)
	SendMessage(ctx context.Context, otherUserID uint, content string) (*models.Message, error)
}

// Clock creates the refresh ticker. Tests substitute a manual one.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock is backed by time.NewTicker.
type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

type Options struct {
	Clock Clock
	// Store is cleared when the server rejects the credential.
	Store session.Store
	// OnLogout runs once after an auth failure, after the session was cleared.
	OnLogout func()
	// OnChange receives new states in dispatch order. It runs outside the poller's
	// lock but calls are serialized; a state overtaken by a newer one while waiting
	// is dropped. OnChange must not dispatch events itself.
	OnChange func(State)
	Log      *zap.Logger
}

// Poller owns a State and turns Reduce's effects into timers and requests.
type Poller struct {
	api      ChatAPI
	clock    Clock
	store    session.Store
	onLogout func()
	onChange func(State)
	log      *zap.Logger
	ctx      context.Context

	mu     sync.Mutex
	state  State
	seq    uint64
	ticker Ticker
	stopCh chan struct{}

	notifyMu  sync.Mutex
	delivered uint64
}

// New returns an idle poller. Requests are made with ctx; cancelling it aborts them.
func New(ctx context.Context, api ChatAPI, opts Options) *Poller {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Poller{
		api:      api,
		clock:    opts.Clock,
		store:    opts.Store,
		onLogout: opts.OnLogout,
		onChange: opts.OnChange,
		log:      opts.Log,
		ctx:      ctx,
		state:    State{Messages: map[uint][]models.Message{}},
	}
}

func (p *Poller) Select(otherUserID uint) { p.Dispatch(Select{ID: otherUserID}) }
func (p *Poller) Deselect()               { p.Dispatch(Deselect{}) }
func (p *Poller) Refresh()                { p.Dispatch(Refresh{}) }
func (p *Poller) Send(content string)     { p.Dispatch(Send{Content: content}) }

// Stop disarms the timer. Requests still in flight complete and are discarded.
func (p *Poller) Stop() { p.Dispatch(Deselect{}) }

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ActiveTimers reports how many refresh tickers the poller currently holds (0 or 1).
func (p *Poller) ActiveTimers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ticker == nil {
		return 0
	}
	return 1
}

// Dispatch feeds one event through Reduce and runs the effects.
func (p *Poller) Dispatch(ev Event) {
	p.mu.Lock()
	next, effects := Reduce(p.state, ev)
	p.state = next
	p.seq++
	seq := p.seq
	var after []func()
	for _, eff := range effects {
		if f := p.apply(eff); f != nil {
			after = append(after, f)
		}
	}
	p.mu.Unlock()

	for _, f := range after {
		f()
	}
	p.notify(seq, next)
}

// notify hands s to OnChange unless a later state already went out.
func (p *Poller) notify(seq uint64, s State) {
	if p.onChange == nil {
		return
	}
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	if seq <= p.delivered {
		return
	}
	p.delivered = seq
	p.onChange(s)
}

// apply runs one effect with p.mu held. Work that may call back into the poller is
// returned and run after the lock is released.
func (p *Poller) apply(eff Effect) func() {
	switch eff := eff.(type) {
	case ArmTimer:
		p.disarm()
		p.ticker = p.clock.NewTicker(eff.Period)
		p.stopCh = make(chan struct{})
		go p.forwardTicks(p.ticker, p.stopCh)

	case DisarmTimer:
		p.disarm()

	case Fetch:
		go func() {
			messages, err := p.api.GetMessages(p.ctx, eff.ID)
			if err != nil {
				p.log.Debug("fetch failed", zap.Uint("conversation", eff.ID), zap.Error(err))
			}
			p.Dispatch(FetchDone{ID: eff.ID, Gen: eff.Gen, Messages: messages, Err: err})
		}()

	case Post:
		go func() {
			message, err := p.api.SendMessage(p.ctx, eff.ID, eff.Content)
			if err != nil {
				p.log.Debug("send failed", zap.Uint("conversation", eff.ID), zap.Error(err))
			}
			p.Dispatch(SendDone{ID: eff.ID, Gen: eff.Gen, Message: message, Err: err})
		}()

	case ClearSession:
		return func() {
			if p.store == nil {
				return
			}
			if err := p.store.Clear(); err != nil {
				p.log.Warn("failed to clear stored session", zap.Error(err))
			}
		}

	case RedirectLogin:
		p.log.Info("session rejected by the server, logging out")
		return p.onLogout
	}
	return nil
}

func (p *Poller) disarm() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	close(p.stopCh)
	p.ticker = nil
	p.stopCh = nil
}

func (p *Poller) forwardTicks(t Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-t.C():
			p.Dispatch(Tick{})
		case <-stop:
			return
		case <-p.ctx.Done():
			return
		}
	}
}
