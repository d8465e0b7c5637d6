// Package session owns the client's view state machine, the current identity
// and the request sequencing against the matching backend.
//
// All state changes happen inside Controller methods, which are called from a
// single event loop (the bubbletea program, or Drive for command-line use).
// Network calls run as tea.Cmd functions and report back through messages, so
// a slow backend only suspends the sequence that issued the call.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/iksnae/openup-cli/internal"

	tea "github.com/charmbracelet/bubbletea"
)

// ViewState is the screen the controller currently shows
type ViewState int

const (
	ViewWelcome ViewState = iota
	ViewOnboarding
	ViewDashboardInput
	ViewDashboardGraph
)

func (v ViewState) String() string {
	switch v {
	case ViewWelcome:
		return "welcome"
	case ViewOnboarding:
		return "onboarding"
	case ViewDashboardInput:
		return "dashboard-input"
	case ViewDashboardGraph:
		return "dashboard-graph"
	default:
		return "unknown"
	}
}

// IsDashboard reports whether v is one of the dashboard sub-modes
func (v ViewState) IsDashboard() bool {
	return v == ViewDashboardInput || v == ViewDashboardGraph
}

// Status messages shown in the single status slot
const (
	StatusProcessing    = "Processing session..."
	StatusIngested      = "Session ingested. Graph updated."
	StatusFindingMatch  = "Finding matches..."
	StatusMatchesFound  = "Matches found."
	statusErrorPrefix   = "Error: "
	statusMatchesPrefix = "Error matching: "
)

// Backend is the subset of the API client the controller sequences
type Backend interface {
	SubmitSession(ctx context.Context, userID string, role internal.Role, transcript string) (*internal.SessionReceipt, error)
	GetMatches(ctx context.Context, userID string, topK int) ([]internal.MatchResult, error)
	GetGraph(ctx context.Context) (internal.GraphSnapshot, error)
}

// ResultObserver is told about every last-known-good update
type ResultObserver interface {
	MatchesUpdated(userID string, matches []internal.MatchResult)
	GraphUpdated(graph internal.GraphSnapshot)
	LoggedOut(userID string)
}

// State is a snapshot of everything the presentation layer renders.
//
// Matches and Graph are last-known-good: a failed fetch leaves them as they
// were, so stale results stay visible until the next success.
type State struct {
	View       ViewState
	Identity   *internal.Identity
	Draft      string
	Submitting bool
	Status     string
	// StatusErr is the failure behind Status, nil when Status is not an error
	StatusErr error

	Matches          []internal.MatchResult
	MatchesUpdatedAt time.Time
	Graph            internal.GraphSnapshot
	GraphUpdatedAt   time.Time
}

// Controller is the session state machine
type Controller struct {
	ctx      context.Context
	backend  Backend
	store    internal.IdentityStore
	observer ResultObserver
	suffix   func() int
	now      func() time.Time
	topK     int

	state      State
	onboarding *Onboarding

	// generation tags in-flight sequences; bumped whenever the identity
	// changes so late results for a previous identity are dropped
	generation uint64
}

// Option configures a Controller
type Option func(*Controller)

// WithSuffixSource overrides the random userId suffix generator
func WithSuffixSource(fn func() int) Option {
	return func(c *Controller) { c.suffix = fn }
}

// WithTopK sets how many matches are requested
func WithTopK(k int) Option {
	return func(c *Controller) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithObserver registers a ResultObserver
func WithObserver(o ResultObserver) Option {
	return func(c *Controller) { c.observer = o }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a controller. ctx bounds every backend call it issues.
func NewController(ctx context.Context, backend Backend, store internal.IdentityStore, opts ...Option) *Controller {
	c := &Controller{
		ctx:     ctx,
		backend: backend,
		store:   store,
		suffix:  internal.RandomSuffix,
		now:     time.Now,
		topK:    internal.DefaultTopK,
		state:   State{View: ViewWelcome},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state
func (c *Controller) State() State {
	s := c.state
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	if s.Matches != nil {
		s.Matches = append([]internal.MatchResult(nil), s.Matches...)
	}
	return s
}

// View returns the current view state
func (c *Controller) View() ViewState { return c.state.View }

// Identity returns a copy of the current identity, nil when signed out
func (c *Controller) Identity() *internal.Identity { return c.State().Identity }

// Onboarding returns the active wizard, nil outside the onboarding view
func (c *Controller) Onboarding() *Onboarding { return c.onboarding }

// TopK returns the number of matches requested per fetch
func (c *Controller) TopK() int { return c.topK }

// Boot restores a saved identity. With one the dashboard is shown and a
// graph refresh is issued; without one the welcome view is shown.
func (c *Controller) Boot() tea.Cmd {
	identity, ok := c.store.Load()
	if !ok {
		internal.LogDebug("No saved identity, showing welcome")
		c.state = State{View: ViewWelcome}
		return nil
	}

	internal.LogInfo("Restored identity %s (%s)", identity.UserID, identity.Role)
	c.generation++
	c.state = State{View: ViewDashboardInput, Identity: identity}
	return c.refreshGraph()
}

// Preload seeds last-known-good results, e.g. from an on-disk cache. It is a
// no-op without an identity or when results were already fetched.
func (c *Controller) Preload(matches []internal.MatchResult, graph internal.GraphSnapshot, updatedAt time.Time) {
	if c.state.Identity == nil {
		return
	}
	if c.state.Matches == nil && matches != nil {
		c.state.Matches = append([]internal.MatchResult(nil), matches...)
		c.state.MatchesUpdatedAt = updatedAt
	}
	if c.state.Graph == nil && graph != nil {
		c.state.Graph = graph
		c.state.GraphUpdatedAt = updatedAt
	}
}

// Start moves from welcome to onboarding
func (c *Controller) Start() {
	if c.state.View != ViewWelcome {
		return
	}
	c.onboarding = NewOnboarding()
	c.state.View = ViewOnboarding
}

// CompleteOnboarding accepts the wizard's profile, derives and persists the
// identity, and enters the dashboard. A ValidationError is returned while the
// form is incomplete; the view is left unchanged.
func (c *Controller) CompleteOnboarding() (tea.Cmd, error) {
	if c.state.View != ViewOnboarding || c.onboarding == nil {
		return nil, &internal.ValidationError{Field: "view", Reason: "not onboarding"}
	}
	profile, err := c.onboarding.Complete()
	if err != nil {
		return nil, err
	}
	return c.establish(profile), nil
}

// Register runs onboarding in one step from an already collected profile
func (c *Controller) Register(profile internal.Profile) (tea.Cmd, error) {
	if c.state.View == ViewWelcome {
		c.Start()
	}
	if c.state.View != ViewOnboarding {
		return nil, &internal.ValidationError{Field: "view", Reason: "already signed in"}
	}
	if err := c.onboarding.SelectRole(profile.Role); err != nil {
		return nil, err
	}
	c.onboarding.SetName(profile.Name)
	c.onboarding.SetContext(profile.Context)
	return c.CompleteOnboarding()
}

func (c *Controller) establish(profile internal.Profile) tea.Cmd {
	identity := internal.NewIdentity(profile, c.suffix)
	if err := c.store.Save(identity); err != nil {
		// The session continues in memory; it just will not survive a restart.
		internal.LogWarn("Failed to persist identity %s: %v", identity.UserID, err)
	}
	internal.LogInfo("Onboarded %s as %s", identity.UserID, identity.Role)

	c.onboarding = nil
	c.generation++
	c.state = State{View: ViewDashboardInput, Identity: identity}
	return c.refreshGraph()
}

// Logout clears the stored identity and returns to welcome. In-flight
// results issued before the logout are discarded when they arrive.
func (c *Controller) Logout() {
	if !c.state.View.IsDashboard() {
		return
	}
	var userID string
	if c.state.Identity != nil {
		userID = c.state.Identity.UserID
	}
	if err := c.store.Clear(); err != nil {
		internal.LogWarn("Failed to clear stored identity: %v", err)
	}
	internal.LogInfo("Logged out %s", userID)

	c.generation++
	c.onboarding = nil
	c.state = State{View: ViewWelcome}
	if c.observer != nil && userID != "" {
		c.observer.LoggedOut(userID)
	}
}

// SetMode switches between the dashboard input and graph sub-modes
func (c *Controller) SetMode(v ViewState) {
	if c.state.View.IsDashboard() && v.IsDashboard() {
		c.state.View = v
	}
}

// ToggleMode flips between the dashboard sub-modes
func (c *Controller) ToggleMode() {
	switch c.state.View {
	case ViewDashboardInput:
		c.state.View = ViewDashboardGraph
	case ViewDashboardGraph:
		c.state.View = ViewDashboardInput
	}
}

// SetDraft replaces the transcript being composed
func (c *Controller) SetDraft(transcript string) {
	if c.state.View.IsDashboard() {
		c.state.Draft = transcript
	}
}

// CanSubmit mirrors the enabled state of the submit control
func (c *Controller) CanSubmit() bool {
	return c.state.View == ViewDashboardInput &&
		c.state.Identity != nil &&
		!c.state.Submitting &&
		strings.TrimSpace(c.state.Draft) != ""
}

// Submit starts the submit-session sequence. It returns nil, without any
// network call, when submission is not possible.
func (c *Controller) Submit() tea.Cmd {
	if !c.CanSubmit() {
		return nil
	}

	c.state.Submitting = true
	c.setStatus(StatusProcessing, nil)

	gen := c.generation
	identity := *c.state.Identity
	transcript := c.state.Draft
	ctx := c.ctx
	backend := c.backend
	return func() tea.Msg {
		receipt, err := backend.SubmitSession(ctx, identity.UserID, identity.Role, transcript)
		return sessionSubmittedMsg{gen: gen, userID: identity.UserID, receipt: receipt, err: err}
	}
}

// FetchMatches issues a standalone matches fetch for the current identity
func (c *Controller) FetchMatches() tea.Cmd {
	if c.state.Identity == nil {
		return nil
	}
	c.setStatus(StatusFindingMatch, nil)
	return c.fetchMatches(false)
}

// RefreshGraph issues a best-effort graph refresh
func (c *Controller) RefreshGraph() tea.Cmd {
	if !c.state.View.IsDashboard() {
		return nil
	}
	return c.refreshGraph()
}

func (c *Controller) fetchMatches(chained bool) tea.Cmd {
	gen := c.generation
	userID := c.state.Identity.UserID
	topK := c.topK
	ctx := c.ctx
	backend := c.backend
	return func() tea.Msg {
		matches, err := backend.GetMatches(ctx, userID, topK)
		return matchesFetchedMsg{gen: gen, userID: userID, chained: chained, matches: matches, err: err}
	}
}

func (c *Controller) refreshGraph() tea.Cmd {
	gen := c.generation
	ctx := c.ctx
	backend := c.backend
	return func() tea.Msg {
		graph, err := backend.GetGraph(ctx)
		return graphRefreshedMsg{gen: gen, graph: graph, err: err}
	}
}

// Update applies a result message and returns any follow-up command.
// Messages that do not belong to the controller are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case sessionSubmittedMsg:
		if c.stale(msg.gen, "session submission") {
			return nil
		}
		return c.handleSubmitted(msg)
	case matchesFetchedMsg:
		if c.stale(msg.gen, "matches") {
			return nil
		}
		c.handleMatches(msg)
	case graphRefreshedMsg:
		if c.stale(msg.gen, "graph") {
			return nil
		}
		c.handleGraph(msg)
	}
	return nil
}

// setStatus overwrites the single status slot
func (c *Controller) setStatus(text string, err error) {
	c.state.Status = text
	c.state.StatusErr = err
}

func (c *Controller) stale(gen uint64, what string) bool {
	if gen == c.generation {
		return false
	}
	internal.LogDebug("Discarding %s result from generation %d (current %d)", what, gen, c.generation)
	return true
}

func (c *Controller) handleSubmitted(msg sessionSubmittedMsg) tea.Cmd {
	if msg.err != nil {
		internal.LogWarn("Session submission for %s failed: %v", msg.userID, msg.err)
		c.setStatus(statusErrorPrefix+msg.err.Error(), msg.err)
		c.state.Submitting = false
		return nil
	}

	if msg.receipt != nil && msg.receipt.SessionID != "" {
		internal.LogInfo("Session %s ingested for %s", msg.receipt.SessionID, msg.userID)
	}
	c.setStatus(StatusIngested, nil)
	c.state.Draft = ""

	cmds := []tea.Cmd{c.refreshGraph()}
	if c.state.Identity.IsMentee() {
		c.setStatus(StatusFindingMatch, nil)
		cmds = append(cmds, c.fetchMatches(true))
	} else {
		c.state.Submitting = false
	}
	return tea.Batch(cmds...)
}

func (c *Controller) handleMatches(msg matchesFetchedMsg) {
	if msg.chained {
		c.state.Submitting = false
	}
	if msg.err != nil {
		internal.LogWarn("Matches fetch for %s failed: %v", msg.userID, msg.err)
		c.setStatus(statusMatchesPrefix+msg.err.Error(), msg.err)
		return
	}

	c.state.Matches = msg.matches
	c.state.MatchesUpdatedAt = c.now()
	c.setStatus(StatusMatchesFound, nil)
	if c.observer != nil {
		c.observer.MatchesUpdated(msg.userID, msg.matches)
	}
}

func (c *Controller) handleGraph(msg graphRefreshedMsg) {
	if msg.err != nil {
		internal.LogWarn("Failed to fetch graph: %v", msg.err)
		return
	}
	c.state.Graph = msg.graph
	c.state.GraphUpdatedAt = c.now()
	if c.observer != nil {
		c.observer.GraphUpdated(msg.graph)
	}
}

// Drive runs cmd and every follow-up command to completion on the calling
// goroutine, feeding each result back into Update. Command-line entry points
// use it in place of a bubbletea program.
func (c *Controller) Drive(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			queue = append(queue, c.Update(msg))
		}
	}
}
