package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cloo-solutions/khub/internal/compare"
	"github.com/cloo-solutions/khub/internal/dispatch"
	"github.com/cloo-solutions/khub/internal/domain"
	"github.com/cloo-solutions/khub/internal/pagination"
	"github.com/cloo-solutions/khub/internal/session"
	"github.com/google/uuid"
)

// Mode is how the last query was submitted.
type Mode string

const (
	ModeSingle  Mode = "single"
	ModeCompare Mode = "compare"
)

// NoticeText is shown while the failure notice is raised.
const NoticeText = "Unable to send a request!"

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// PageRequest selects pages; zero keeps the current page.
type PageRequest struct {
	Page      int
	LeftPage  int
	RightPage int
}

// StatusInfo is the backend liveness indicator.
type StatusInfo struct {
	Reachability     string `json:"reachability"`
	Status           string `json:"status"`
	CompareAvailable bool   `json:"compare_available"`
}

// State is what a client renders for one explorer session.
type State struct {
	SessionID    string                                `json:"session_id"`
	Query        string                                `json:"query"`
	Mode         Mode                                  `json:"mode,omitempty"`
	Reachability string                                `json:"reachability"`
	Status       string                                `json:"status"`
	Notice       bool                                  `json:"notice"`
	NoticeText   string                                `json:"notice_text,omitempty"`
	Statistics   string                                `json:"statistics,omitempty"`
	Duration     *float64                              `json:"duration,omitempty"`
	Results      *pagination.Page[domain.SearchResult] `json:"results,omitempty"`
	Left         *pagination.Page[domain.SearchResult] `json:"left,omitempty"`
	Right        *pagination.Page[domain.SearchResult] `json:"right,omitempty"`
	Voted        bool                                  `json:"voted"`
	CanVote      bool                                  `json:"can_vote"`
}

// Statistics renders the result summary line. It is empty until a query
// resolves.
func Statistics(size int, duration *float64) string {
	switch {
	case size < 0:
		return ""
	case size == 0:
		return "No search results retrieved"
	}
	seconds := "0"
	if duration != nil {
		seconds = strconv.FormatFloat(*duration, 'f', -1, 64)
	}
	return fmt.Sprintf("Retrieved %d items in %s seconds", size, seconds)
}

// storedResults is the value persisted under session.KeyResults.
type storedResults struct {
	Mode     Mode                  `json:"mode,omitempty"`
	Source   domain.Source         `json:"source,omitempty"`
	Results  []domain.SearchResult `json:"results"`
	Left     []domain.SearchResult `json:"left"`
	Right    []domain.SearchResult `json:"right"`
	Duration *float64              `json:"duration,omitempty"`
}

// explorerSession is the live state of one session. mu guards every field.
type explorerSession struct {
	id         string
	generation uint64
	query      string
	mode       Mode
	source     domain.Source
	single     domain.QueryOutcome
	cycle      compare.Cycle
	duration   *float64
	notice     *dispatch.Notice
	reachable  domain.Reachability

	page, leftPage, rightPage int

	mu sync.Mutex
}

func newExplorerSession(id string, clearDelay time.Duration) *explorerSession {
	return &explorerSession{
		id:        id,
		notice:    dispatch.NewNotice(clearDelay),
		page:      1,
		leftPage:  1,
		rightPage: 1,
	}
}

// begin starts a submission and returns its generation.
func (e *explorerSession) begin(query string, mode Mode) uint64 {
	e.generation++
	e.query = query
	e.mode = mode
	return e.generation
}

// clear drops all content and supersedes any in-flight submission.
func (e *explorerSession) clear() {
	e.generation++
	e.query = ""
	e.reset("")
}

// fail raises the notice and clears the content of the failed submission.
func (e *explorerSession) fail() {
	e.notice.Raise()
	e.reset(e.mode)
}

func (e *explorerSession) reset(mode Mode) {
	e.mode = mode
	e.source = ""
	e.single = domain.QueryOutcome{}
	e.cycle = compare.Cycle{}
	e.duration = nil
	e.resetPages()
}

func (e *explorerSession) resolveSingle(source domain.Source, results []domain.SearchResult, duration float64) {
	e.reset(ModeSingle)
	e.source = source
	e.single = domain.QueryOutcome{Results: results, Duration: &duration}
	e.duration = &duration
}

func (e *explorerSession) resolveCompare(cycle compare.Cycle, duration float64) {
	e.reset(ModeCompare)
	e.cycle = cycle
	e.duration = &duration
}

func (e *explorerSession) resetPages() {
	e.page, e.leftPage, e.rightPage = 1, 1, 1
}

func (e *explorerSession) size() int {
	if e.mode == ModeCompare {
		return e.cycle.Size()
	}
	return e.single.Size()
}

func (e *explorerSession) stored() storedResults {
	return storedResults{
		Mode:     e.mode,
		Source:   e.source,
		Results:  e.single.Results,
		Left:     e.cycle.Left,
		Right:    e.cycle.Right,
		Duration: e.duration,
	}
}

// restore rebuilds a session from the store. Values that fail to load are
// treated as absent.
func (s *ExplorerService) restore(ctx context.Context, id string) *explorerSession {
	sess := newExplorerSession(id, s.opts.ErrorClearDelay)

	var (
		stored    storedResults
		voted     bool
		side      int
		reachable string
	)
	s.load(ctx, id, session.KeyQuery, &sess.query)
	s.load(ctx, id, session.KeyVoted, &voted)
	s.load(ctx, id, session.KeyRandomSide, &side)
	s.load(ctx, id, session.KeyReachable, &reachable)
	sess.reachable = domain.ParseReachability(reachable)
	if !s.load(ctx, id, session.KeyResults, &stored) {
		return sess
	}

	sess.mode = stored.Mode
	sess.source = stored.Source
	sess.duration = stored.Duration
	switch stored.Mode {
	case ModeCompare:
		sess.cycle = compare.Cycle{
			Query: sess.query,
			Side:  compare.Side(side),
			Left:  stored.Left,
			Right: stored.Right,
			Voted: voted,
		}
	case ModeSingle:
		sess.single = domain.QueryOutcome{Results: stored.Results, Duration: stored.Duration}
	}
	return sess
}

func (s *ExplorerService) load(ctx context.Context, id, field string, v any) bool {
	found, err := session.LoadJSON(ctx, s.store, session.Key(id, field), v)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Str("key", field).Msg("session value unreadable, treating as absent")
		return false
	}
	return found
}

func (s *ExplorerService) save(ctx context.Context, id, field string, v any) {
	if err := session.SaveJSON(ctx, s.store, session.Key(id, field), v); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Str("key", field).Msg("failed to persist session value")
	}
}

// persistAll writes every field of sess through to the store.
func (s *ExplorerService) persistAll(ctx context.Context, sess *explorerSession) {
	s.save(ctx, sess.id, session.KeyQuery, sess.query)
	s.save(ctx, sess.id, session.KeyResults, sess.stored())
	s.save(ctx, sess.id, session.KeyVoted, sess.cycle.Voted)
	s.save(ctx, sess.id, session.KeyRandomSide, int(sess.cycle.Side))
}

// stateLocked renders sess. The caller holds sess.mu.
func (s *ExplorerService) stateLocked(ctx context.Context, sess *explorerSession, req PageRequest) *State {
	reach := s.reach.Load()
	if reach != sess.reachable {
		sess.reachable = reach
		s.save(ctx, sess.id, session.KeyReachable, reach.String())
	}

	if req.Page > 0 {
		sess.page = req.Page
	}
	if req.LeftPage > 0 {
		sess.leftPage = req.LeftPage
	}
	if req.RightPage > 0 {
		sess.rightPage = req.RightPage
	}

	st := &State{
		SessionID:    sess.id,
		Query:        sess.query,
		Mode:         sess.mode,
		Reachability: reach.String(),
		Status:       reach.StatusText(),
		Notice:       sess.notice.Active(),
		Statistics:   Statistics(sess.size(), sess.duration),
		Duration:     sess.duration,
	}
	if st.Notice {
		st.NoticeText = NoticeText
	}

	switch sess.mode {
	case ModeSingle:
		if sess.single.Resolved() {
			page := pagination.Paginate(sess.single.Results, s.opts.PageSize, sess.page)
			sess.page = page.Current
			st.Results = &page
		}
	case ModeCompare:
		if sess.cycle.Resolved() {
			left := pagination.Paginate(sess.cycle.Left, s.opts.PageSize, sess.leftPage)
			right := pagination.Paginate(sess.cycle.Right, s.opts.PageSize, sess.rightPage)
			sess.leftPage, sess.rightPage = left.Current, right.Current
			st.Left, st.Right = &left, &right
		}
		st.Voted = sess.cycle.Voted
		st.CanVote = sess.cycle.CanVote()
	}

	return st
}
