// Package session implements the Session Manager (spec §4.8): per-
// session JSON documents under `.mantic/sessions/`, loaded by id or
// active-status name, with every state change persisted atomically.
// Persistence style (temp file + rename) is grounded on the teacher's
// internal/mcp/context_manifest_tool.go save path.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theodags/mantic/internal/types"
)

// Dir is the sessions directory name under a project's tool directory.
const Dir = "sessions"

const (
	maxBoostFactor   = 50.0
	recentViewBonus  = 20.0
	recentViewWindow = 5 * time.Minute
)

// Manager owns the sessions directory for one project root and tracks
// the in-memory active session (spec §4.8).
type Manager struct {
	root   string
	active *types.Session
}

// NewManager creates a Manager rooted at projectRoot.
func NewManager(projectRoot string) *Manager {
	return &Manager{root: projectRoot}
}

func (m *Manager) dir() string {
	return filepath.Join(m.root, ".mantic", Dir)
}

func (m *Manager) pathFor(id string) string {
	return filepath.Join(m.dir(), id+".json")
}

// NewID generates a `session-<unix-ms>-<6-char-random>` identifier
// (spec §4.8). The random component reuses google/uuid rather than
// hand-rolling an RNG.
func NewID() string {
	rand := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
	return fmt.Sprintf("session-%d-%s", time.Now().UnixMilli(), rand)
}

// Start creates a new active session (spec §4.8).
func (m *Manager) Start(name string, intent types.IntentCategory) (*types.Session, error) {
	now := time.Now()
	s := &types.Session{
		Meta: types.SessionMeta{
			ID:         NewID(),
			Name:       name,
			Created:    now,
			LastActive: now,
			Intent:     intent,
			Status:     types.SessionActive,
		},
		Views: make(map[string]*types.FileView),
	}
	if err := m.save(s); err != nil {
		return nil, err
	}
	m.active = s
	return s, nil
}

// Load finds a session by id, or, if not found, by active-status name
// (spec §4.8).
func (m *Manager) Load(idOrName string) (*types.Session, error) {
	if s, err := m.loadByID(idOrName); err == nil && s != nil {
		return s, nil
	}

	sessions, err := m.List()
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.Meta.Status == types.SessionActive && s.Meta.Name == idOrName {
			return s, nil
		}
	}
	return nil, nil
}

func (m *Manager) loadByID(id string) (*types.Session, error) {
	data, err := os.ReadFile(m.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var s types.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordQuery appends a query record and bumps counters (spec §4.8).
func (m *Manager) RecordQuery(s *types.Session, query string, filesReturned []string) error {
	s.History = append(s.History, types.QueryRecord{
		Query: query, Files: filesReturned, Timestamp: time.Now(),
	})
	s.Meta.QueryCount++
	s.Meta.LastActive = time.Now()
	return m.save(s)
}

// RecordFileViews merges view counts, lastViewed timestamps, first-seen
// relevance scores, and blast radii (spec §4.8).
func (m *Manager) RecordFileViews(s *types.Session, files []types.ScoredFile) error {
	if s.Views == nil {
		s.Views = make(map[string]*types.FileView)
	}
	now := time.Now()
	for _, f := range files {
		view, ok := s.Views[f.Path]
		if !ok {
			bucket := types.BlastRadiusBucket("")
			if f.Impact != nil {
				bucket = f.Impact.BlastRadiusBucket
			}
			view = &types.FileView{RelevanceScore: f.Score, BlastRadius: bucket}
			s.Views[f.Path] = view
		}
		view.ViewCount++
		view.LastViewed = now
	}
	s.Meta.LastActive = now
	return m.save(s)
}

// RecordViewNote attaches a free-text note to one file's view record,
// creating the view if it does not exist yet (spec §3 FileView.Notes).
func (m *Manager) RecordViewNote(s *types.Session, path, note string) error {
	if s.Views == nil {
		s.Views = make(map[string]*types.FileView)
	}
	view, ok := s.Views[path]
	if !ok {
		view = &types.FileView{}
		s.Views[path] = view
	}
	view.Notes = append(view.Notes, note)
	view.ViewCount++
	view.LastViewed = time.Now()
	s.Meta.LastActive = time.Now()
	return m.save(s)
}

// AddInsight appends a note to the session (spec §4.8).
func (m *Manager) AddInsight(s *types.Session, text string) error {
	s.Insights = append(s.Insights, text)
	return m.save(s)
}

// GetBoostCandidates emits {path, boostFactor, reason} for the Structural
// Scorer's session-boost signal (spec §4.8, §4.4).
func (m *Manager) GetBoostCandidates(s *types.Session) []types.BoostCandidate {
	now := time.Now()
	var out []types.BoostCandidate
	for p, v := range s.Views {
		factor := 10.0 * float64(v.ViewCount)
		if factor > maxBoostFactor {
			factor = maxBoostFactor
		}
		reason := "recent-view"
		if now.Sub(v.LastViewed) <= recentViewWindow {
			factor += recentViewBonus
			reason = "recently-viewed"
		}
		out = append(out, types.BoostCandidate{Path: p, BoostFactor: factor, Reason: reason})
	}
	return out
}

// End flips the session's status to ended and re-saves it (spec §4.8).
func (m *Manager) End(s *types.Session) error {
	s.Meta.Status = types.SessionEnded
	s.Meta.LastActive = time.Now()
	return m.save(s)
}

// List scans the sessions directory and orders by last-active
// descending (spec §4.8).
func (m *Manager) List() ([]*types.Session, error) {
	entries, err := os.ReadDir(m.dir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []*types.Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		s, err := m.loadByID(id)
		if err != nil || s == nil {
			continue
		}
		sessions = append(sessions, s)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Meta.LastActive.After(sessions[j].Meta.LastActive)
	})
	return sessions, nil
}

// Delete removes the session file for id (spec §4.8).
func (m *Manager) Delete(id string) error {
	err := os.Remove(m.pathFor(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// save writes the full session document atomically via a temp file
// plus rename (spec §4.8 "every state change writes the full document
// atomically").
func (m *Manager) save(s *types.Session) error {
	if err := os.MkdirAll(m.dir(), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(m.dir(), s.Meta.ID+"-*.json.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, m.pathFor(s.Meta.ID))
}
