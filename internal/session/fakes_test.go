package session

import (
	"context"
	"errors"
	"sync"

	"github.com/iksnae/openup-cli/internal"
)

type sessionCall struct {
	userID     string
	role       internal.Role
	transcript string
}

type matchCall struct {
	userID string
	topK   int
}

// scriptedBackend records calls and replies with canned results
type scriptedBackend struct {
	mu sync.Mutex

	sessionErr error
	matches    []internal.MatchResult
	matchErr   error
	graph      internal.GraphSnapshot
	graphErr   error

	sessionCalls []sessionCall
	matchCalls   []matchCall
	graphCalls   int
}

func newScriptedBackend() *scriptedBackend {
	return &scriptedBackend{
		matches: []internal.MatchResult{},
		graph:   internal.GraphSnapshot{"mentor_alice": []byte(`{}`)},
	}
}

func (b *scriptedBackend) SubmitSession(ctx context.Context, userID string, role internal.Role, transcript string) (*internal.SessionReceipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionCalls = append(b.sessionCalls, sessionCall{userID: userID, role: role, transcript: transcript})
	if b.sessionErr != nil {
		return nil, b.sessionErr
	}
	return &internal.SessionReceipt{Message: "Session processed successfully", SessionID: "s-1"}, nil
}

func (b *scriptedBackend) GetMatches(ctx context.Context, userID string, topK int) ([]internal.MatchResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matchCalls = append(b.matchCalls, matchCall{userID: userID, topK: topK})
	if b.matchErr != nil {
		return nil, b.matchErr
	}
	return append([]internal.MatchResult(nil), b.matches...), nil
}

func (b *scriptedBackend) GetGraph(ctx context.Context) (internal.GraphSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.graphCalls++
	if b.graphErr != nil {
		return nil, b.graphErr
	}
	return b.graph, nil
}

// recordingObserver captures every result notification
type recordingObserver struct {
	matches   [][]internal.MatchResult
	graphs    []internal.GraphSnapshot
	loggedOut []string
}

func (o *recordingObserver) MatchesUpdated(userID string, matches []internal.MatchResult) {
	o.matches = append(o.matches, matches)
}

func (o *recordingObserver) GraphUpdated(graph internal.GraphSnapshot) {
	o.graphs = append(o.graphs, graph)
}

func (o *recordingObserver) LoggedOut(userID string) {
	o.loggedOut = append(o.loggedOut, userID)
}

// failingStore refuses every write
type failingStore struct{}

func (failingStore) Load() (*internal.Identity, bool) { return nil, false }
func (failingStore) Save(*internal.Identity) error { return errors.New("disk full") }
func (failingStore) Clear() error { return errors.New("disk full") }
