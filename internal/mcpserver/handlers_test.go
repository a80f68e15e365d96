package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/theodags/mantic/internal/config"
	"github.com/theodags/mantic/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	full := filepath.Join(root, "src", "auth.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("export function login() {}"), 0o644))

	cfg := config.Default()
	cfg.Project.Root = root
	return New(cfg, nil)
}

func callRequest(t *testing.T, params interface{}) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
}

func decodeText(t *testing.T, result *mcp.CallToolResult, out interface{}) {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(text.Text), out))
}

func TestHandleSearchFiles_ReturnsScoredFiles(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleSearchFiles(context.Background(), callRequest(t, searchFilesParams{Query: "auth login"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var parsed types.Result
	decodeText(t, result, &parsed)
	require.NotEmpty(t, parsed.Files)
}

func TestHandleAnalyzeIntent_ClassifiesQuery(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleAnalyzeIntent(context.Background(), callRequest(t, analyzeIntentParams{Query: "fix login bug"}))
	require.NoError(t, err)

	var parsed types.IntentAnalysis
	decodeText(t, result, &parsed)
	require.NotEmpty(t, parsed.Keywords)
}

func TestSessionLifecycle_StartRecordViewEndList(t *testing.T) {
	s := newTestServer(t)

	startResult, err := s.handleSessionStart(context.Background(), callRequest(t, sessionStartParams{Name: "demo"}))
	require.NoError(t, err)
	var sess types.Session
	decodeText(t, startResult, &sess)
	require.Equal(t, "demo", sess.Meta.Name)
	require.Equal(t, types.SessionActive, sess.Meta.Status)

	viewResult, err := s.handleSessionRecordView(context.Background(), callRequest(t, sessionRecordViewParams{
		ID: sess.Meta.ID, Path: "src/auth.ts", Note: "looks relevant",
	}))
	require.NoError(t, err)
	var view types.FileView
	decodeText(t, viewResult, &view)
	require.Equal(t, 1, view.ViewCount)
	require.Equal(t, []string{"looks relevant"}, view.Notes)

	listResult, err := s.handleSessionList(context.Background(), callRequest(t, struct{}{}))
	require.NoError(t, err)
	var listed struct {
		Sessions []types.SessionMeta `json:"sessions"`
	}
	decodeText(t, listResult, &listed)
	require.Len(t, listed.Sessions, 1)

	endResult, err := s.handleSessionEnd(context.Background(), callRequest(t, sessionIDParams{ID: sess.Meta.ID}))
	require.NoError(t, err)
	var meta types.SessionMeta
	decodeText(t, endResult, &meta)
	require.Equal(t, types.SessionEnded, meta.Status)
}

func TestHandleSearchFiles_UsesActiveSessionForFollowUpBoost(t *testing.T) {
	s := newTestServer(t)

	startResult, err := s.handleSessionStart(context.Background(), callRequest(t, sessionStartParams{Name: "demo"}))
	require.NoError(t, err)
	var sess types.Session
	decodeText(t, startResult, &sess)

	firstResult, err := s.handleSearchFiles(context.Background(), callRequest(t, searchFilesParams{Query: "auth login"}))
	require.NoError(t, err)
	var first types.Result
	decodeText(t, firstResult, &first)
	require.NotEmpty(t, first.Files)

	secondResult, err := s.handleSearchFiles(context.Background(), callRequest(t, searchFilesParams{Query: "login redirect"}))
	require.NoError(t, err)
	var second types.Result
	decodeText(t, secondResult, &second)

	var boosted bool
	for _, f := range second.Files {
		if f.Path == first.Files[0].Path {
			for _, r := range f.MatchReasons {
				if r == "recently-viewed" || r == "recent-view" {
					boosted = true
				}
			}
		}
	}
	require.True(t, boosted, "second search should boost the file the active session recorded a view for")
}

func TestHandleSessionInfo_UnknownIDIsAnErrorResponse(t *testing.T) {
	s := newTestServer(t)
	result, err := s.handleSessionInfo(context.Background(), callRequest(t, sessionIDParams{ID: "does-not-exist"}))
	require.NoError(t, err)
	require.True(t, result.IsError)
}
