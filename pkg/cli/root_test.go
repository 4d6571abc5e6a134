package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parseRequest struct {
	name         string
	sessionToken string
	body         map[string]interface{}
}

// fakeParseServer records tracking requests sent to /events/{name}
type fakeParseServer struct {
	mu       sync.Mutex
	requests []parseRequest
	status   int
}

func newFakeParseServer(t *testing.T) (*fakeParseServer, *httptest.Server) {
	t.Helper()

	fp := &fakeParseServer{status: http.StatusOK}
	router := mux.NewRouter()
	router.HandleFunc("/parse/events/{name}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)

		fp.mu.Lock()
		fp.requests = append(fp.requests, parseRequest{
			name:         mux.Vars(r)["name"],
			sessionToken: r.Header.Get("X-Parse-Session-Token"),
			body:         body,
		})
		status := fp.status
		fp.mu.Unlock()

		w.WriteHeader(status)
		if status >= 300 {
			_, _ = w.Write([]byte(`{"code":1,"error":"internal server error"}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return fp, srv
}

func (fp *fakeParseServer) recorded() []parseRequest {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return append([]parseRequest(nil), fp.requests...)
}

// setupCLITest points the CLI at a fake Parse server through the environment
func setupCLITest(t *testing.T) *fakeParseServer {
	t.Helper()

	fp, srv := newFakeParseServer(t)
	t.Setenv("PARSE_SERVER_URL", srv.URL+"/parse")
	t.Setenv("PARSE_APPLICATION_ID", "test-app")
	t.Setenv("PARSE_LOG_LEVEL", "error")
	t.Setenv("PARSE_SESSION_PROVIDER", "none")
	return fp
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := NewRootCommandWithOutput(&out, &errOut)
	err := root.Execute(context.Background(), args)
	return out.String(), errOut.String(), err
}

func TestNewRootCommand(t *testing.T) {
	root := NewRootCommand()

	// Test basic properties
	assert.Equal(t, "parse-analytics", root.Name)
	assert.Equal(t, "Parse Analytics - track app opens and custom events", root.Description)
	assert.NotNil(t, root.Subcommands)
	assert.NotNil(t, root.Flags)
	assert.NotNil(t, root.Flags.Lookup("config"))

	expectedCommands := []string{"event", "app-opened"}
	for _, cmdName := range expectedCommands {
		assert.Contains(t, root.Subcommands, cmdName, "Expected subcommand %s to be registered", cmdName)
	}
	assert.Equal(t, len(expectedCommands), len(root.Subcommands))
}

func TestCommandUsage(t *testing.T) {
	for _, args := range [][]string{nil, {"help"}, {"-h"}} {
		_, errOut, err := execute(t, args...)
		assert.NoError(t, err)
		assert.Contains(t, errOut, "Usage: parse-analytics [-config file] <command> [args]")
		assert.Contains(t, errOut, "Commands:")
		assert.Contains(t, errOut, "app-opened")
		assert.Contains(t, errOut, "event")
	}
}

func TestCommandExecute_UnknownCommand(t *testing.T) {
	_, _, err := execute(t, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: nonexistent")
}

func TestCommandExecute_UnknownFlag(t *testing.T) {
	_, _, err := execute(t, "-bogus")
	require.Error(t, err)
}

func TestCommandExecute_ConfigFile(t *testing.T) {
	fp, srv := newFakeParseServer(t)
	t.Setenv("PARSE_LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "parse-analytics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
parse:
  server_url: `+srv.URL+`/parse
  application_id: file-app
session:
  provider: static
  token: r:from-file
  cache_ttl: 1m
`), 0o600))

	out, _, err := execute(t, "-config", path, "event", "-name", "signup")
	require.NoError(t, err)
	assert.Contains(t, out, `Tracked event "signup" 1/1 times`)

	reqs := fp.recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, "r:from-file", reqs[0].sessionToken)
}

func TestCommandExecute_InvalidConfig(t *testing.T) {
	t.Setenv("PARSE_APPLICATION_ID", "")
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parse: {}\n"), 0o600))

	_, _, err := execute(t, "-config", path, "app-opened")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application id is required")
}
