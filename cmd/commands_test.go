package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/openup-cli/internal"
	"github.com/iksnae/openup-cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	backend  *testutil.FakeBackend
	stateDir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, key := range []string{"OPENUP_API_URL", "OPENUP_STATE_DIR", "OPENUP_STORE", "OPENUP_REQUEST_TIMEOUT", "OPENUP_TOP_K"} {
		t.Setenv(key, "")
	}
	return &cliEnv{
		backend:  testutil.NewFakeBackend(t),
		stateDir: testutil.CreateTempDir(t),
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"--api-url", e.backend.URL(), "--state-dir", e.stateDir}, args...)
	return execute(t, nil, full...)
}

func (e *cliEnv) runAll(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	full := append([]string{"--api-url", e.backend.URL(), "--state-dir", e.stateDir}, args...)
	return executeAll(t, nil, full...)
}

func (e *cliEnv) runWithStdin(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	full := append([]string{"--api-url", e.backend.URL(), "--state-dir", e.stateDir}, args...)
	return execute(t, strings.NewReader(stdin), full...)
}

func (e *cliEnv) onboard(t *testing.T, role string) {
	t.Helper()
	_, err := e.run(t, "onboard", "--role", role, "--name", "Alex Chen", "--context", "grow as an engineer")
	require.NoError(t, err)
}

func TestOnboardCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "onboard", "--role", "mentee", "--name", "Alex Chen", "--context", "grow as an engineer")
	require.NoError(t, err)
	assert.Contains(t, out, "User ID: alex_chen_")
	assert.Contains(t, out, "Role:    mentee")

	_, err = os.Stat(filepath.Join(env.stateDir, internal.IdentityKey+".json"))
	assert.NoError(t, err, "identity should be persisted")

	// the boot graph refresh is the only network call
	assert.Len(t, env.backend.RequestsTo("/graph"), 1)
	assert.Empty(t, env.backend.RequestsTo("/session"))
}

func TestOnboardCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown role", args: []string{"onboard", "--role", "admin", "--name", "Alex"}},
		{name: "missing name flag", args: []string{"onboard", "--role", "mentee"}},
		{name: "blank name", args: []string{"onboard", "--role", "mentee", "--name", "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t)
			_, err := env.run(t, tt.args...)
			assert.Error(t, err)
			_, statErr := os.Stat(filepath.Join(env.stateDir, internal.IdentityKey+".json"))
			assert.True(t, os.IsNotExist(statErr), "nothing should be persisted")
		})
	}
}

func TestOnboardCommand_AlreadySignedIn(t *testing.T) {
	env := newCLIEnv(t)
	env.onboard(t, "mentee")

	_, err := env.run(t, "onboard", "--role", "mentor", "--name", "Sam Ortiz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already signed in")
}

func TestWhoamiCommand(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)

	env.onboard(t, "mentor")
	out, err := env.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:    Alex Chen")
	assert.Contains(t, out, "Role:    mentor")
	assert.NotContains(t, out, "cached matches")
}

func TestWhoamiCommand_CachedMatches(t *testing.T) {
	env := newCLIEnv(t)
	env.onboard(t, "mentee")

	out, err := env.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached matches")

	matches := []internal.MatchResult{
		{MentorID: "mentor_alice", Score: 0.9, Rationale: "a"},
		{MentorID: "mentor_bob", Score: 0.5, Rationale: "b"},
	}
	env.backend.SetReply("/match", http.StatusOK, string(testutil.JSONMarshal(t, matches)))
	_, err = env.run(t, "matches")
	require.NoError(t, err)

	out, err = env.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "2 cached matches, updated")
}

func TestSubmitCommand_Mentee(t *testing.T) {
	env := newCLIEnv(t)
	env.onboard(t, "mentee")
	env.backend.SetReply("/match", http.StatusOK,
		`[{"mentor_id":"mentor_alice","score":0.87,"rationale":"Both focus on systems design"}]`)

	out, err := env.run(t, "submit", "I want to learn systems design")
	require.NoError(t, err)
	assert.Contains(t, out, internal.FormatScore(0.87))
	assert.Contains(t, out, "mentor_alice")

	sessions := env.backend.RequestsTo("/session")
	require.Len(t, sessions, 1)
	assert.Equal(t, "mentee", sessions[0].Body["user_type"])
	assert.Equal(t, "I want to learn systems design", sessions[0].Body["transcript"])

	matches := env.backend.RequestsTo("/match")
	require.Len(t, matches, 1)
	assert.Equal(t, float64(internal.DefaultTopK), matches[0].Body["top_k"])
}

func TestSubmitCommand_MentorSkipsMatches(t *testing.T) {
	env := newCLIEnv(t)
	env.onboard(t, "mentor")

	_, err := env.run(t, "submit", "Ten years of backend work")
	require.NoError(t, err)
	assert.Len(t, env.backend.RequestsTo("/session"), 1)
	assert.Empty(t, env.backend.RequestsTo("/match"))
}

func TestSubmitCommand_Stdin(t *testing.T) {
	env := newCLIEnv(t)
	env.onboard(t, "mentor")

	_, err := env.runWithStdin(t, "notes from stdin\n", "submit", "-")
	require.NoError(t, err)
	sessions := env.backend.RequestsTo("/session")
	require.Len(t, sessions, 1)
	assert.Equal(t, "notes from stdin\n", sessions[0].Body["transcript"])
}

func TestSubmitCommand_Errors(t *testing.T) {
	t.Run("not signed in", func(t *testing.T) {
		env := newCLIEnv(t)
		_, err := env.run(t, "submit", "hello")
		assert.ErrorIs(t, err, errNotSignedIn)
	})

	t.Run("blank transcript", func(t *testing.T) {
		env := newCLIEnv(t)
		env.onboard(t, "mentee")
		_, err := env.run(t, "submit", "   ")
		assert.ErrorIs(t, err, internal.ErrEmptyTranscript)
		assert.Empty(t, env.backend.RequestsTo("/session"))
	})

	t.Run("backend failure", func(t *testing.T) {
		env := newCLIEnv(t)
		env.onboard(t, "mentee")
		env.backend.SetReply("/session", http.StatusInternalServerError, `{"detail":"Graph store unavailable"}`)

		_, err := env.run(t, "submit", "hello")
		require.Error(t, err)
		assert.True(t, internal.IsBackendError(err))
		assert.Equal(t, "Graph store unavailable", err.Error())
		assert.Empty(t, env.backend.RequestsTo("/match"))
	})

	t.Run("matches failure after ingest", func(t *testing.T) {
		env := newCLIEnv(t)
		env.onboard(t, "mentee")
		env.backend.SetReply("/match", http.StatusServiceUnavailable, `{"detail":"Matcher warming up"}`)

		out, stderr, err := env.runAll(t, "submit", "hello")
		require.NoError(t, err, "an ingested session is not a failed command")
		assert.Contains(t, out, "Session ingested")
		assert.Contains(t, stderr, "WARNING: Error matching: Matcher warming up")
		assert.Len(t, env.backend.RequestsTo("/session"), 1)
		assert.Len(t, env.backend.RequestsTo("/match"), 1)
	})
}

func TestMatchesCommand(t *testing.T) {
	env := newCLIEnv(t)
	env.onboard(t, "mentee")
	env.backend.SetReply("/match", http.StatusOK,
		`[{"mentor_id":"mentor_alice","score":0.9,"rationale":"a"},{"mentor_id":"mentor_bob","score":0.5,"rationale":"b"}]`)

	out, err := env.run(t, "matches", "--top-k", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "1. mentor_alice")
	assert.Contains(t, out, "2. mentor_bob")

	reqs := env.backend.RequestsTo("/match")
	require.Len(t, reqs, 1)
	assert.Equal(t, float64(5), reqs[0].Body["top_k"])

	// a later failure still leaves the cached list readable
	env.backend.SetReply("/match", http.StatusServiceUnavailable, `{"detail":"down"}`)
	_, err = env.run(t, "matches")
	assert.Error(t, err)

	out, err = env.run(t, "matches", "--cached")
	require.NoError(t, err)
	assert.Contains(t, out, "mentor_alice")
}

func TestGraphCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "graph")
	require.NoError(t, err)
	assert.Contains(t, out, "Total users: 2")
	assert.Contains(t, out, "mentor_alice")

	out, err = env.run(t, "graph", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, `"mentee_frank"`)

	env.backend.SetReply("/graph", http.StatusInternalServerError, `{"detail":"boom"}`)
	_, err = env.run(t, "graph")
	assert.Error(t, err)

	out, err = env.run(t, "graph", "--cached")
	require.NoError(t, err)
	assert.Contains(t, out, "Total users: 2")
}

func TestHealthcheckCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "healthcheck", "--details")
	require.NoError(t, err)
	assert.Contains(t, out, "Health check passed")
	assert.Contains(t, out, "No saved identity")
	assert.Contains(t, out, env.backend.URL())

	env.backend.SetReply("/health", http.StatusServiceUnavailable, `{"detail":"maintenance"}`)
	out, err = env.run(t, "healthcheck")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Contacting backend: maintenance")
	assert.Contains(t, out, "Configuration loaded")
	assert.Contains(t, out, "Health check failed")

	out, err = env.run(t, "healthcheck", "--store", "bogus")
	require.Error(t, err)
	assert.Contains(t, out, "Failed to load configuration")
	assert.NotContains(t, out, "Backend")
}

func TestLogoutCommand(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "logout")
	assert.ErrorIs(t, err, errNotSignedIn)

	env.onboard(t, "mentee")
	out, err := env.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out alex_chen_")

	_, err = env.run(t, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestLogoutCommand_ClearCache(t *testing.T) {
	env := newCLIEnv(t)
	env.onboard(t, "mentee")
	_, err := env.run(t, "graph")
	require.NoError(t, err)
	_, err = env.run(t, "graph", "--cached")
	require.NoError(t, err)

	out, err := env.run(t, "logout", "--clear-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out alex_chen_")
	assert.Contains(t, out, "Cache cleared")

	_, err = env.run(t, "graph", "--cached")
	assert.Error(t, err, "graph cache should be gone")
}

func TestExportCommand(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "export", "--format", "invalid")
	assert.Error(t, err, "invalid format should error")

	_, err = env.run(t, "export")
	assert.ErrorIs(t, err, errNotSignedIn)

	env.onboard(t, "mentee")
	env.backend.SetReply("/match", http.StatusOK, `[{"mentor_id":"mentor_alice","score":0.8,"rationale":"x"}]`)
	_, err = env.run(t, "matches")
	require.NoError(t, err)

	out, err := env.run(t, "export", "--format", "jsonl")
	require.NoError(t, err)
	assert.Contains(t, out, `"mentor_id":"mentor_alice"`)

	path := filepath.Join(testutil.CreateTempDir(t), "report.md")
	_, err = env.run(t, "export", "--format", "md", "--output", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mentor_alice")
}

func TestReadTranscript(t *testing.T) {
	got, err := readTranscript(strings.NewReader("from stdin"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readTranscript(nil, []string{"several", "words"})
	require.NoError(t, err)
	assert.Equal(t, "several words", got)
}
