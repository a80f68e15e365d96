package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/theodags/mantic/internal/config"
	"github.com/theodags/mantic/internal/intent"
	"github.com/theodags/mantic/internal/pipeline"
	"github.com/theodags/mantic/internal/types"
)

// searchFilesParams mirrors spec §6's search_files tool signature.
type searchFilesParams struct {
	Query         string `json:"query"`
	Cwd           string `json:"cwd,omitempty"`
	Filter        string `json:"filter,omitempty"`
	MaxResults    int    `json:"maxResults,omitempty"`
	IncludeImpact bool   `json:"includeImpact,omitempty"`
}

func (s *Server) configFor(cwd string) (*config.Config, error) {
	if cwd == "" {
		return s.cfg, nil
	}
	return config.Load(cwd)
}

func (s *Server) handleSearchFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params searchFilesParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("search_files", fmt.Errorf("invalid parameters: %w", err))
	}

	cfg, err := s.configFor(params.Cwd)
	if err != nil {
		return errorResponse("search_files", err)
	}
	if params.MaxResults > 0 {
		cfg.Search.MaxResults = params.MaxResults
	}

	var onlyTags []types.FileTag
	switch params.Filter {
	case "code":
		onlyTags = []types.FileTag{types.TagCode}
	case "config":
		onlyTags = []types.FileTag{types.TagConfig}
	case "test":
		onlyTags = []types.FileTag{types.TagTest}
	}

	result, err := pipeline.Run(ctx, cfg, s.logger, pipeline.Options{
		Query:           params.Query,
		OnlyTags:        onlyTags,
		Impact:          params.IncludeImpact,
		SessionIDOrName: s.activeSession(),
		IndexCache:      s.idxCache,
	})
	if err != nil {
		return errorResponse("search_files", err)
	}
	return jsonResponse(result)
}

type analyzeIntentParams struct {
	Query string `json:"query"`
}

func (s *Server) handleAnalyzeIntent(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params analyzeIntentParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("analyze_intent", fmt.Errorf("invalid parameters: %w", err))
	}
	return jsonResponse(intent.Analyze(params.Query))
}

type sessionStartParams struct {
	Name   string `json:"name,omitempty"`
	Intent string `json:"intent,omitempty"`
}

func (s *Server) handleSessionStart(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params sessionStartParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("session_start", fmt.Errorf("invalid parameters: %w", err))
	}
	sess, err := s.sess.Start(params.Name, types.IntentCategory(params.Intent))
	if err != nil {
		return errorResponse("session_start", err)
	}
	s.setActiveSession(sess.Meta.ID)
	return jsonResponse(sess)
}

func (s *Server) handleSessionList(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.sess.List()
	if err != nil {
		return errorResponse("session_list", err)
	}
	metas := make([]types.SessionMeta, 0, len(sessions))
	for _, sess := range sessions {
		metas = append(metas, sess.Meta)
	}
	return jsonResponse(map[string]interface{}{"sessions": metas})
}

type sessionIDParams struct {
	ID string `json:"id"`
}

func (s *Server) handleSessionInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params sessionIDParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("session_info", fmt.Errorf("invalid parameters: %w", err))
	}
	sess, err := s.sess.Load(params.ID)
	if err != nil {
		return errorResponse("session_info", err)
	}
	if sess == nil {
		return errorResponse("session_info", fmt.Errorf("no session found for %q", params.ID))
	}
	return jsonResponse(sess)
}

func (s *Server) handleSessionEnd(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params sessionIDParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("session_end", fmt.Errorf("invalid parameters: %w", err))
	}
	sess, err := s.sess.Load(params.ID)
	if err != nil {
		return errorResponse("session_end", err)
	}
	if sess == nil {
		return errorResponse("session_end", fmt.Errorf("no session found for %q", params.ID))
	}
	if err := s.sess.End(sess); err != nil {
		return errorResponse("session_end", err)
	}
	if s.activeSession() == sess.Meta.ID {
		s.setActiveSession("")
	}
	return jsonResponse(sess.Meta)
}

type sessionRecordViewParams struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Note string `json:"note,omitempty"`
}

func (s *Server) handleSessionRecordView(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params sessionRecordViewParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return errorResponse("session_record_view", fmt.Errorf("invalid parameters: %w", err))
	}
	sess, err := s.sess.Load(params.ID)
	if err != nil {
		return errorResponse("session_record_view", err)
	}
	if sess == nil {
		return errorResponse("session_record_view", fmt.Errorf("no session found for %q", params.ID))
	}

	if params.Note != "" {
		if err := s.sess.RecordViewNote(sess, params.Path, params.Note); err != nil {
			return errorResponse("session_record_view", err)
		}
	} else if err := s.sess.RecordFileViews(sess, []types.ScoredFile{{Path: params.Path}}); err != nil {
		return errorResponse("session_record_view", err)
	}
	return jsonResponse(sess.Views[params.Path])
}
