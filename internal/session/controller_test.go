package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/iksnae/openup-cli/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestController(t *testing.T, backend Backend, store internal.IdentityStore, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{
		WithSuffixSource(func() int { return 42 }),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return NewController(context.Background(), backend, store, opts...)
}

// signedInController returns a controller already on the dashboard
func signedInController(t *testing.T, backend *scriptedBackend, role internal.Role, opts ...Option) (*Controller, *internal.MemoryIdentityStore) {
	t.Helper()
	store := internal.NewMemoryIdentityStore()
	require.NoError(t, store.Save(internal.CreateTestIdentity("Alex Chen", role)))
	c := newTestController(t, backend, store, opts...)
	c.Drive(c.Boot())
	require.Equal(t, ViewDashboardInput, c.View())
	return c, store
}

func TestViewState_String(t *testing.T) {
	assert.Equal(t, "welcome", ViewWelcome.String())
	assert.Equal(t, "onboarding", ViewOnboarding.String())
	assert.Equal(t, "dashboard-input", ViewDashboardInput.String())
	assert.Equal(t, "dashboard-graph", ViewDashboardGraph.String())
	assert.False(t, ViewOnboarding.IsDashboard())
	assert.True(t, ViewDashboardGraph.IsDashboard())
}

func TestController_BootWithoutIdentity(t *testing.T) {
	backend := newScriptedBackend()
	c := newTestController(t, backend, internal.NewMemoryIdentityStore())

	assert.Nil(t, c.Boot())
	assert.Equal(t, ViewWelcome, c.View())
	assert.Nil(t, c.Identity())
	assert.Equal(t, 0, backend.graphCalls)
}

func TestController_OnboardMentee(t *testing.T) {
	backend := newScriptedBackend()
	store := internal.NewMemoryIdentityStore()
	c := NewController(context.Background(), backend, store)
	c.Boot()

	c.Start()
	require.Equal(t, ViewOnboarding, c.View())
	ob := c.Onboarding()
	require.NotNil(t, ob)

	// incomplete form is rejected and the view stays put
	cmd, err := c.CompleteOnboarding()
	assert.Error(t, err)
	assert.Nil(t, cmd)
	assert.Equal(t, ViewOnboarding, c.View())

	require.NoError(t, ob.SelectRole(internal.RoleMentee))
	ob.SetName("Alex Chen")
	ob.SetContext("grow as an engineer")

	cmd, err = c.CompleteOnboarding()
	require.NoError(t, err)
	assert.Equal(t, ViewDashboardInput, c.View())
	assert.Nil(t, c.Onboarding())

	identity := c.Identity()
	require.NotNil(t, identity)
	assert.Regexp(t, regexp.MustCompile(`^alex_chen_\d{1,3}$`), identity.UserID)
	assert.Equal(t, internal.RoleMentee, identity.Role)

	stored, ok := store.Load()
	require.True(t, ok)
	assert.Equal(t, identity, stored)

	// entering the dashboard refreshes the graph
	c.Drive(cmd)
	assert.Equal(t, 1, backend.graphCalls)
	assert.Equal(t, 1, c.State().Graph.UserCount())
	assert.Empty(t, backend.sessionCalls)
}

func TestController_Register(t *testing.T) {
	backend := newScriptedBackend()
	c := newTestController(t, backend, internal.NewMemoryIdentityStore())
	c.Boot()

	_, err := c.Register(internal.Profile{Role: internal.RoleMentor, Name: "  ", Context: "x"})
	assert.Error(t, err)

	c2 := newTestController(t, backend, internal.NewMemoryIdentityStore())
	c2.Boot()
	cmd, err := c2.Register(internal.Profile{Role: internal.RoleMentor, Name: "Sam Ortiz", Context: "ten years"})
	require.NoError(t, err)
	assert.NotNil(t, cmd)
	assert.Equal(t, "sam_ortiz_42", c2.Identity().UserID)

	_, err = c2.Register(internal.Profile{Role: internal.RoleMentee, Name: "Other", Context: "x"})
	assert.Error(t, err, "already signed in")
}

func TestController_OnboardWithFailingStore(t *testing.T) {
	c := newTestController(t, newScriptedBackend(), failingStore{})
	c.Boot()

	_, err := c.Register(internal.Profile{Role: internal.RoleMentee, Name: "Alex Chen", Context: "grow"})
	require.NoError(t, err, "the session continues in memory")
	assert.Equal(t, ViewDashboardInput, c.View())
	assert.Equal(t, "alex_chen_42", c.Identity().UserID)
}

func TestController_RestoreSavedIdentity(t *testing.T) {
	backend := newScriptedBackend()
	c, _ := signedInController(t, backend, internal.RoleMentee)

	assert.Equal(t, "alex_chen_42", c.Identity().UserID)
	assert.Equal(t, 1, backend.graphCalls, "restore issues a graph refresh")
	assert.True(t, c.State().GraphUpdatedAt.Equal(fixedNow))
}

func TestController_SubmitMentee(t *testing.T) {
	backend := newScriptedBackend()
	backend.matches = []internal.MatchResult{
		{MentorID: "mentor_alice", Score: 0.87, Rationale: "Both focus on systems design"},
	}
	c, _ := signedInController(t, backend, internal.RoleMentee)

	c.SetDraft("I want to learn systems design")
	require.True(t, c.CanSubmit())

	submit := c.Submit()
	require.NotNil(t, submit)
	st := c.State()
	assert.True(t, st.Submitting)
	assert.Equal(t, StatusProcessing, st.Status)
	assert.False(t, c.CanSubmit(), "no second submission while one is in flight")
	assert.Nil(t, c.Submit())

	// session ingested; the matches fetch is still pending
	follow := c.Update(submit())
	require.NotNil(t, follow)
	st = c.State()
	assert.True(t, st.Submitting)
	assert.Equal(t, StatusFindingMatch, st.Status)
	assert.Equal(t, "", st.Draft)

	c.Drive(follow)
	st = c.State()
	assert.False(t, st.Submitting)
	assert.Equal(t, StatusMatchesFound, st.Status)
	assert.NoError(t, st.StatusErr)
	require.Len(t, st.Matches, 1)
	assert.Equal(t, "87%", st.Matches[0].Percent())
	assert.True(t, st.MatchesUpdatedAt.Equal(fixedNow))

	require.Len(t, backend.sessionCalls, 1)
	assert.Equal(t, sessionCall{userID: "alex_chen_42", role: internal.RoleMentee, transcript: "I want to learn systems design"}, backend.sessionCalls[0])
	require.Len(t, backend.matchCalls, 1)
	assert.Equal(t, matchCall{userID: "alex_chen_42", topK: 3}, backend.matchCalls[0])
	assert.Equal(t, 2, backend.graphCalls, "boot plus post-submit refresh")
}

func TestController_SubmitMentor(t *testing.T) {
	backend := newScriptedBackend()
	c, _ := signedInController(t, backend, internal.RoleMentor)

	c.SetDraft("Ten years of backend work")
	c.Drive(c.Submit())

	st := c.State()
	assert.False(t, st.Submitting)
	assert.Equal(t, StatusIngested, st.Status)
	assert.Equal(t, "", st.Draft)
	assert.Len(t, backend.sessionCalls, 1)
	assert.Empty(t, backend.matchCalls, "mentors never fetch matches")
	assert.Nil(t, st.Matches)
}

func TestController_SubmitEmptyDraft(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t"} {
		backend := newScriptedBackend()
		c, _ := signedInController(t, backend, internal.RoleMentee)

		c.SetDraft(draft)
		assert.False(t, c.CanSubmit())
		assert.Nil(t, c.Submit())
		assert.False(t, c.State().Submitting)
		assert.Empty(t, backend.sessionCalls)
	}
}

func TestController_SubmitFromGraphModeIsIgnored(t *testing.T) {
	backend := newScriptedBackend()
	c, _ := signedInController(t, backend, internal.RoleMentee)

	c.SetDraft("hello")
	c.SetMode(ViewDashboardGraph)
	assert.Nil(t, c.Submit())
	c.ToggleMode()
	assert.Equal(t, ViewDashboardInput, c.View())
	assert.Equal(t, "hello", c.State().Draft, "draft survives mode switches")
}

func TestController_SessionFailureKeepsDraft(t *testing.T) {
	backend := newScriptedBackend()
	backend.sessionErr = &internal.BackendError{Op: "session", Status: 500, Message: "Graph store unavailable"}
	c, _ := signedInController(t, backend, internal.RoleMentee)

	c.SetDraft("I want to learn systems design")
	c.Drive(c.Submit())

	st := c.State()
	assert.Equal(t, "Error: Graph store unavailable", st.Status)
	assert.True(t, internal.IsBackendError(st.StatusErr))
	assert.Equal(t, "I want to learn systems design", st.Draft)
	assert.False(t, st.Submitting)
	assert.Empty(t, backend.matchCalls)
	assert.True(t, c.CanSubmit(), "the user can retry")
}

func TestController_MatchFailureKeepsPreviousList(t *testing.T) {
	backend := newScriptedBackend()
	c, _ := signedInController(t, backend, internal.RoleMentee)

	previous := internal.CreateTestMatches(2)
	earlier := fixedNow.Add(-time.Hour)
	c.Preload(previous, nil, earlier)

	backend.matchErr = &internal.BackendError{Op: "match", Status: 503, Message: "matcher offline"}
	c.SetDraft("new goals")
	c.Drive(c.Submit())

	st := c.State()
	assert.Equal(t, "Error matching: matcher offline", st.Status)
	assert.Error(t, st.StatusErr)
	assert.Equal(t, previous, st.Matches)
	assert.True(t, st.MatchesUpdatedAt.Equal(earlier))
	assert.False(t, st.Submitting)
	assert.Equal(t, "", st.Draft, "the session itself was ingested")
}

func TestController_GraphFailureDoesNotAffectSubmit(t *testing.T) {
	backend := newScriptedBackend()
	backend.graphErr = &internal.BackendError{Op: "graph", Message: "graph offline"}
	backend.matches = internal.CreateTestMatches(1)
	c, _ := signedInController(t, backend, internal.RoleMentee)
	assert.Nil(t, c.State().Graph)
	assert.Equal(t, "", c.State().Status, "graph failures are not surfaced")

	c.SetDraft("hello")
	c.Drive(c.Submit())

	st := c.State()
	assert.Equal(t, StatusMatchesFound, st.Status)
	assert.Len(t, st.Matches, 1)
	assert.Nil(t, st.Graph)
}

func TestController_GraphFailureKeepsLastSnapshot(t *testing.T) {
	backend := newScriptedBackend()
	c, _ := signedInController(t, backend, internal.RoleMentee)
	require.Equal(t, 1, c.State().Graph.UserCount())

	backend.graphErr = &internal.BackendError{Op: "graph", Message: "graph offline"}
	c.Drive(c.RefreshGraph())
	assert.Equal(t, 1, c.State().Graph.UserCount())
	assert.Equal(t, 2, backend.graphCalls)
}

func TestController_FetchMatches(t *testing.T) {
	backend := newScriptedBackend()
	backend.matches = internal.CreateTestMatches(2)
	c, _ := signedInController(t, backend, internal.RoleMentee, WithTopK(5))

	assert.Equal(t, 5, c.TopK())
	c.Drive(c.FetchMatches())
	st := c.State()
	assert.Equal(t, StatusMatchesFound, st.Status)
	assert.Len(t, st.Matches, 2)
	assert.False(t, st.Submitting)
	require.Len(t, backend.matchCalls, 1)
	assert.Equal(t, 5, backend.matchCalls[0].topK)

	signedOut := newTestController(t, backend, internal.NewMemoryIdentityStore())
	assert.Nil(t, signedOut.FetchMatches())
}

func TestController_Logout(t *testing.T) {
	backend := newScriptedBackend()
	observer := &recordingObserver{}
	c, store := signedInController(t, backend, internal.RoleMentee, WithObserver(observer))
	c.Preload(internal.CreateTestMatches(1), nil, fixedNow)
	c.SetDraft("unsent")

	c.Logout()
	st := c.State()
	assert.Equal(t, ViewWelcome, st.View)
	assert.Nil(t, st.Identity)
	assert.Nil(t, st.Matches)
	assert.Nil(t, st.Graph)
	assert.Equal(t, "", st.Draft)
	assert.Equal(t, []string{"alex_chen_42"}, observer.loggedOut)

	_, ok := store.Load()
	assert.False(t, ok)

	// a fresh start shows welcome
	c2 := newTestController(t, backend, store)
	assert.Nil(t, c2.Boot())
	assert.Equal(t, ViewWelcome, c2.View())
}

func TestController_LogoutOutsideDashboardIsIgnored(t *testing.T) {
	store := internal.NewMemoryIdentityStore()
	c := newTestController(t, newScriptedBackend(), store)
	c.Boot()
	c.Start()

	c.Logout()
	assert.Equal(t, ViewOnboarding, c.View())
}

func TestController_StaleResultsAreDiscarded(t *testing.T) {
	backend := newScriptedBackend()
	backend.matches = internal.CreateTestMatches(1)
	observer := &recordingObserver{}
	c, _ := signedInController(t, backend, internal.RoleMentee, WithObserver(observer))
	observer.graphs = nil

	c.SetDraft("in flight")
	submit := c.Submit()
	graph := c.RefreshGraph()
	c.Logout()

	// results arriving after logout change nothing
	assert.Nil(t, c.Update(submit()))
	assert.Nil(t, c.Update(graph()))
	st := c.State()
	assert.Equal(t, ViewWelcome, st.View)
	assert.Equal(t, "", st.Status)
	assert.Nil(t, st.Graph)
	assert.Empty(t, observer.graphs)

	// and nothing leaks into the next identity either
	_, err := c.Register(internal.Profile{Role: internal.RoleMentee, Name: "Sam Ortiz", Context: "grow"})
	require.NoError(t, err)
	stale := matchesFetchedMsg{gen: 1, userID: "alex_chen_42", chained: true, matches: internal.CreateTestMatches(3)}
	assert.Nil(t, c.Update(stale))
	assert.Nil(t, c.State().Matches)
	assert.Empty(t, observer.matches)
}

func TestController_ObserverNotified(t *testing.T) {
	backend := newScriptedBackend()
	backend.matches = internal.CreateTestMatches(2)
	observer := &recordingObserver{}
	c, _ := signedInController(t, backend, internal.RoleMentee, WithObserver(observer))

	c.SetDraft("hello")
	c.Drive(c.Submit())

	assert.Len(t, observer.graphs, 2)
	require.Len(t, observer.matches, 1)
	assert.Len(t, observer.matches[0], 2)
}

func TestController_SetDraftOutsideDashboard(t *testing.T) {
	c := newTestController(t, newScriptedBackend(), internal.NewMemoryIdentityStore())
	c.Boot()
	c.SetDraft("hello")
	assert.Equal(t, "", c.State().Draft)

	c.SetMode(ViewDashboardGraph)
	assert.Equal(t, ViewWelcome, c.View())
	c.ToggleMode()
	assert.Equal(t, ViewWelcome, c.View())
	assert.Nil(t, c.RefreshGraph())
}

func TestController_StateIsACopy(t *testing.T) {
	c, _ := signedInController(t, newScriptedBackend(), internal.RoleMentee)
	c.Preload(internal.CreateTestMatches(1), nil, fixedNow)

	st := c.State()
	st.Identity.Name = "changed"
	st.Matches[0].MentorID = "changed"

	assert.Equal(t, "Alex Chen", c.Identity().Name)
	assert.Equal(t, "mentor_a", c.State().Matches[0].MentorID)
}

func TestController_Preload(t *testing.T) {
	c := newTestController(t, newScriptedBackend(), internal.NewMemoryIdentityStore())
	c.Boot()
	c.Preload(internal.CreateTestMatches(1), nil, fixedNow)
	assert.Nil(t, c.State().Matches, "no preload without an identity")

	backend := newScriptedBackend()
	backend.graphErr = &internal.BackendError{Op: "graph", Message: "offline"}
	signedIn, _ := signedInController(t, backend, internal.RoleMentee)
	cachedGraph := internal.GraphSnapshot{"a": []byte(`{}`), "b": []byte(`{}`)}
	signedIn.Preload(internal.CreateTestMatches(2), cachedGraph, fixedNow)
	assert.Len(t, signedIn.State().Matches, 2)
	assert.Equal(t, 2, signedIn.State().Graph.UserCount())

	// fetched results are never replaced by a later preload
	signedIn.Preload(internal.CreateTestMatches(3), nil, fixedNow)
	assert.Len(t, signedIn.State().Matches, 2)
}

func TestController_DriveExpandsBatches(t *testing.T) {
	c := newTestController(t, newScriptedBackend(), internal.NewMemoryIdentityStore())
	var ran []int
	mk := func(i int) tea.Cmd {
		return func() tea.Msg {
			ran = append(ran, i)
			return nil
		}
	}

	c.Drive(tea.Batch(mk(1), tea.Batch(mk(2), mk(3)), nil))
	assert.ElementsMatch(t, []int{1, 2, 3}, ran)
	c.Drive(nil)
}

func TestController_IgnoresForeignMessages(t *testing.T) {
	c, _ := signedInController(t, newScriptedBackend(), internal.RoleMentee)
	before := c.State()
	assert.Nil(t, c.Update(tea.WindowSizeMsg{Width: 80, Height: 24}))
	assert.Equal(t, before, c.State())
}
