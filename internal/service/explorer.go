package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloo-solutions/khub/internal/compare"
	"github.com/cloo-solutions/khub/internal/dispatch"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/session"
	"github.com/cloo-solutions/khub/internal/telemetry"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// Dispatcher runs a query against one or more backends.
type Dispatcher interface {
	Dispatch(ctx context.Context, query string, sources []domain.Source) (dispatch.Result, error)
	Has(source domain.Source) bool
}

// ReachabilityReader exposes the latest liveness result.
type ReachabilityReader interface {
	Load() domain.Reachability
}

// ExplorerOptions configures an ExplorerService. Zero values select defaults.
type ExplorerOptions struct {
	PageSize         int
	RequireReachable bool
	ErrorClearDelay  time.Duration
	CacheSize        int

	// Coin and UUIDGen are replaced in tests.
	Coin    compare.Coin
	UUIDGen UUIDGenerator
}

const defaultCacheSize = 1024

// ExplorerService owns every explorer session: it submits queries, arranges
// comparisons, gates votes and reports paginated state.
type ExplorerService struct {
	dispatcher Dispatcher
	emitter    telemetry.Emitter
	store      session.Store
	reach      ReachabilityReader
	opts       ExplorerOptions
	sessions   *lru.Cache[string, *explorerSession]
	logger     zerolog.Logger

	// pinned holds sessions with a submission in flight so that an LRU
	// eviction never splits one session id into two live copies.
	mu     sync.Mutex
	pinned map[string]*pinnedSession
}

type pinnedSession struct {
	sess *explorerSession
	refs int
}

func NewExplorerService(
	dispatcher Dispatcher,
	emitter telemetry.Emitter,
	store session.Store,
	reach ReachabilityReader,
	opts ExplorerOptions,
	logger zerolog.Logger,
) (*ExplorerService, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	if opts.ErrorClearDelay <= 0 {
		opts.ErrorClearDelay = dispatch.DefaultClearDelay
	}
	if opts.Coin == nil {
		opts.Coin = compare.RandomCoin
	}
	if opts.UUIDGen == nil {
		opts.UUIDGen = &DefaultUUIDGenerator{}
	}
	if emitter == nil {
		emitter = telemetry.NopEmitter{}
	}

	cache, err := lru.New[string, *explorerSession](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	return &ExplorerService{
		dispatcher: dispatcher,
		emitter:    emitter,
		store:      store,
		reach:      reach,
		opts:       opts,
		sessions:   cache,
		logger:     logger.With().Str("component", "explorer").Logger(),
		pinned:     make(map[string]*pinnedSession),
	}, nil
}

// NewSessionID returns a fresh explorer session id.
func (s *ExplorerService) NewSessionID() string {
	return s.opts.UUIDGen.NewString()
}

// CompareAvailable reports whether both backends are configured.
func (s *ExplorerService) CompareAvailable() bool {
	return s.dispatcher.Has(domain.SourceGraph) && s.dispatcher.Has(domain.SourceDocument)
}

// Status returns the liveness indicator.
func (s *ExplorerService) Status() StatusInfo {
	r := s.reach.Load()
	return StatusInfo{
		Reachability:     r.String(),
		Status:           r.StatusText(),
		CompareAvailable: s.CompareAvailable(),
	}
}

// Search submits query in single-source mode. A blank query clears the
// session's content without contacting any backend.
func (s *ExplorerService) Search(ctx context.Context, sessionID, query string) (*State, error) {
	return s.submit(ctx, sessionID, query, ModeSingle)
}

// Compare submits query to both backends for a blind side by side comparison.
func (s *ExplorerService) Compare(ctx context.Context, sessionID, query string) (*State, error) {
	if !s.CompareAvailable() {
		return nil, domain.ErrCompareUnavailable
	}
	return s.submit(ctx, sessionID, query, ModeCompare)
}

func (s *ExplorerService) submit(ctx context.Context, sessionID, query string, mode Mode) (*State, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		sess.clear()
		s.persistAll(ctx, sess)
		return s.stateLocked(ctx, sess, PageRequest{}), nil
	}

	if s.opts.RequireReachable && s.reach.Load() != domain.ReachabilityReachable {
		return nil, domain.ErrBackendUnreachable
	}

	sources, err := s.sourcesFor(mode)
	if err != nil {
		return nil, err
	}

	defer s.pin(sess)()

	ctx, span := telemetry.StartSpan(ctx, "explorer.submit", telemetry.SpanAttributes{
		SessionID: sessionID,
		Mode:      string(mode),
		Operation: "submit",
	})
	defer span.End()

	sess.mu.Lock()
	gen := sess.begin(query, mode)
	s.save(ctx, sess.id, session.KeyQuery, query)
	sess.mu.Unlock()

	result, dispatchErr := s.dispatcher.Dispatch(ctx, query, sources)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if gen != sess.generation {
		s.logger.Debug().Str("session_id", sess.id).Msg("discarding superseded query outcome")
		return s.stateLocked(ctx, sess, PageRequest{}), domain.ErrQuerySuperseded
	}

	if dispatchErr != nil {
		s.logger.Warn().Err(dispatchErr).Str("session_id", sess.id).Msg("query failed")
		sess.fail()
		s.persistAll(ctx, sess)
		return s.stateLocked(ctx, sess, PageRequest{}), nil
	}

	switch mode {
	case ModeCompare:
		side := compare.PickSide(s.opts.Coin)
		sess.resolveCompare(compare.NewCycle(query, side, result.Outcomes), result.Duration)
	default:
		sess.resolveSingle(sources[0], result.Outcomes[sources[0]], result.Duration)
	}
	s.persistAll(ctx, sess)

	s.emitter.Emit(ctx, telemetry.QueryEvent(sess.id, query, result.Sizes()))

	return s.stateLocked(ctx, sess, PageRequest{}), nil
}

// sourcesFor picks the backends for a submission. Single mode flips a coin
// when both backends are configured.
func (s *ExplorerService) sourcesFor(mode Mode) ([]domain.Source, error) {
	if mode == ModeCompare {
		return []domain.Source{domain.SourceGraph, domain.SourceDocument}, nil
	}

	switch {
	case s.CompareAvailable():
		return []domain.Source{compare.PickSource(s.opts.Coin)}, nil
	case s.dispatcher.Has(domain.SourceGraph):
		return []domain.Source{domain.SourceGraph}, nil
	case s.dispatcher.Has(domain.SourceDocument):
		return []domain.Source{domain.SourceDocument}, nil
	default:
		return nil, domain.ErrSourceNotConfigured
	}
}

// Vote records the user's preference for the result list in slot. Only the
// first vote of a comparison counts.
func (s *ExplorerService) Vote(ctx context.Context, sessionID, slot string) (*State, error) {
	parsed, err := compare.ParseSlot(slot)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.mode != ModeCompare {
		return s.stateLocked(ctx, sess, PageRequest{}), domain.ErrNothingToVote
	}

	source, err := sess.cycle.Vote(parsed)
	if err != nil {
		return s.stateLocked(ctx, sess, PageRequest{}), err
	}
	s.save(ctx, sess.id, session.KeyVoted, true)

	s.emitter.Emit(ctx, telemetry.VoteEvent(sess.id, sess.cycle.Query, source.Label()))
	s.logger.Info().Str("session_id", sess.id).Str("source", string(source)).Msg("vote recorded")

	return s.stateLocked(ctx, sess, PageRequest{}), nil
}

// State returns the session's current state. Non-zero pages in req move the
// corresponding list.
func (s *ExplorerService) State(ctx context.Context, sessionID string, req PageRequest) (*State, error) {
	if req.Page < 0 || req.LeftPage < 0 || req.RightPage < 0 {
		return nil, domain.ErrInvalidPage
	}

	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.stateLocked(ctx, sess, req), nil
}

// session returns the live session for id, restoring it from the store when
// it is neither cached nor pinned by an in-flight submission.
func (s *ExplorerService) session(ctx context.Context, id string) (*explorerSession, error) {
	if id == "" {
		return nil, domain.ErrMissingSession
	}
	if sess, ok := s.lookup(id); ok {
		return sess, nil
	}

	restored := s.restore(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.lookupLocked(id); ok {
		return sess, nil
	}
	s.sessions.Add(id, restored)
	return restored, nil
}

func (s *ExplorerService) lookup(id string) (*explorerSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(id)
}

// lookupLocked checks the cache, then the pinned sessions. A pinned session
// that was evicted goes back into the cache. The caller holds s.mu.
func (s *ExplorerService) lookupLocked(id string) (*explorerSession, bool) {
	if sess, ok := s.sessions.Get(id); ok {
		return sess, true
	}
	if p, ok := s.pinned[id]; ok {
		s.sessions.Add(id, p.sess)
		return p.sess, true
	}
	return nil, false
}

// pin keeps sess reachable by id until the returned release func runs.
func (s *ExplorerService) pin(sess *explorerSession) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pinned[sess.id]
	if !ok {
		p = &pinnedSession{sess: sess}
		s.pinned[sess.id] = p
	}
	p.refs++

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if p.refs--; p.refs == 0 {
			delete(s.pinned, sess.id)
		}
	}
}
