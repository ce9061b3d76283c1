package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/product-return-agent/agent/contract"
	nodex "github.com/tanpawarit/product-return-agent/agent/nodes"
	statex "github.com/tanpawarit/product-return-agent/agent/state"
)

var (
	ErrInvalidTransition = contractx.ErrInvalidTransition
	ErrNilSession        = errors.New("session is nil")
)

type Config struct {
	EventTimeout time.Duration `split_words:"true" default:"2m"`
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine applies events to a Session. It holds no session state itself;
// callers own the Session and must not apply events to it concurrently.
type Engine struct {
	validator   contractx.Validator
	recommender contractx.Recommender
	searcher    contractx.Searcher

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	eventTimeout time.Duration
	logger       zerolog.Logger
}

func New(
	validator contractx.Validator,
	recommender contractx.Recommender,
	searcher contractx.Searcher,
	cfg Config,
	opts ...Option,
) (*Engine, error) {
	if validator == nil {
		return nil, errors.New("validation gateway is required")
	}
	if recommender == nil {
		return nil, errors.New("recommendation gateway is required")
	}
	if searcher == nil {
		return nil, errors.New("marketplace searcher is required")
	}

	e := &Engine{
		validator:    validator,
		recommender:  recommender,
		searcher:     searcher,
		eventTimeout: cfg.EventTimeout,
		logger:       log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	graphRunner, err := e.compileApplyEventGraph(context.Background())
	if err != nil {
		return nil, err
	}
	e.graphRunner = graphRunner

	return e, nil
}

// Apply runs one event against s. A rejected event returns an error
// wrapping ErrInvalidTransition (or contract.ErrValidation for malformed
// input) and leaves s untouched. Gateway failures are not errors: they are
// reported in the transcript.
func (e *Engine) Apply(ctx context.Context, s *statex.Session, ev Event) error {
	if s == nil {
		return ErrNilSession
	}
	ev = nodex.NormalizeEvent(ev)

	logger := e.logger.With().Str("event", string(ev.Kind)).Logger()
	if before := s.Stage; s.SyncStage() {
		logger.Warn().Str("cached", string(before)).Str("derived", string(s.Stage)).Msg("stage drift corrected")
	}
	stageBefore := s.Stage

	if err := nodex.CheckGuard(s, ev); err != nil {
		logger.Debug().Err(err).Str("stage", string(stageBefore)).Msg("event rejected")
		return err
	}

	if e.eventTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.eventTimeout)
		defer cancel()
	}

	// Handlers work on a copy so a failing run never leaves a half-applied event.
	out, err := e.graphRunner.Invoke(ctx, nodex.GraphInput{
		Session: s.Clone(),
		Event:   ev,
	})
	if err != nil {
		logger.Error().Err(err).Msg("apply event")
		return err
	}

	next := out.Session
	next.SyncStage()
	if err := next.Validate(); err != nil {
		logger.Error().Err(err).Msg("event produced an inconsistent session")
		return err
	}
	*s = *next

	evt := logger.Info()
	if out.GatewayErr != nil {
		evt = logger.Warn().Err(out.GatewayErr)
	}
	evt.Str("stage_before", string(stageBefore)).
		Str("stage_after", string(s.Stage)).
		Bool("noop", out.Noop).
		Int("transcript_len", len(s.Transcript)).
		Msg("event applied")
	return nil
}
