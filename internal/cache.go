package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheVersion is written into the index so future layouts can be detected
const CacheVersion = "1.0"

// ResultCache persists last-known-good matches and graph snapshots so they
// stay visible across restarts and when the backend is unreachable.
type ResultCache struct {
	cacheDir string
	now      func() time.Time
}

// ResultIndexEntry records what is cached for one user
type ResultIndexEntry struct {
	UserID     string    `yaml:"user_id"`
	MatchCount int       `yaml:"match_count"`
	UpdatedAt  time.Time `yaml:"updated_at"`
}

// ResultIndex is the YAML index of cached results
type ResultIndex struct {
	Users          []ResultIndexEntry `yaml:"users"`
	GraphUsers     int                `yaml:"graph_users"`
	GraphUpdatedAt time.Time          `yaml:"graph_updated_at,omitempty"`
	CacheVersion   string             `yaml:"cache_version"`
}

// CachedMatches is a match list together with when it was fetched
type CachedMatches struct {
	UserID    string        `json:"user_id"`
	Matches   []MatchResult `json:"matches"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CachedGraph is a graph snapshot together with when it was fetched
type CachedGraph struct {
	Graph     GraphSnapshot `json:"graph"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewResultCache creates a cache rooted at cacheDir
func NewResultCache(cacheDir string) *ResultCache {
	return &ResultCache{
		cacheDir: cacheDir,
		now:      time.Now,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (rc *ResultCache) EnsureCacheDir() error {
	return os.MkdirAll(rc.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (rc *ResultCache) GetCacheDir() string {
	return rc.cacheDir
}

// GetIndexPath returns the path to the results index YAML file
func (rc *ResultCache) GetIndexPath() string {
	return filepath.Join(rc.cacheDir, "results.yaml")
}

// GetMatchesPath returns the path to a user's cached matches
func (rc *ResultCache) GetMatchesPath(userID string) string {
	return filepath.Join(rc.cacheDir, fmt.Sprintf("matches_%s.json", sanitizeFileComponent(userID)))
}

// GetGraphPath returns the path to the cached graph snapshot
func (rc *ResultCache) GetGraphPath() string {
	return filepath.Join(rc.cacheDir, "graph.json")
}

// LoadIndex loads the results index, returning an empty one when missing
func (rc *ResultCache) LoadIndex() (*ResultIndex, error) {
	data, err := os.ReadFile(rc.GetIndexPath())
	if errors.Is(err, os.ErrNotExist) {
		return &ResultIndex{CacheVersion: CacheVersion}, nil
	}
	if err != nil {
		return nil, err
	}

	var index ResultIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	return &index, nil
}

// SaveIndex saves the results index
func (rc *ResultCache) SaveIndex(index *ResultIndex) error {
	if err := rc.EnsureCacheDir(); err != nil {
		return err
	}
	index.CacheVersion = CacheVersion

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return os.WriteFile(rc.GetIndexPath(), data, 0644)
}

// SaveMatches replaces the cached match list for a user
func (rc *ResultCache) SaveMatches(userID string, matches []MatchResult) error {
	if err := rc.EnsureCacheDir(); err != nil {
		return err
	}

	entry := CachedMatches{UserID: userID, Matches: matches, UpdatedAt: rc.now()}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	if err := os.WriteFile(rc.GetMatchesPath(userID), data, 0644); err != nil {
		return err
	}

	index, err := rc.LoadIndex()
	if err != nil {
		LogWarn("Rebuilding unreadable results index: %v", err)
		index = &ResultIndex{}
	}

	found := false
	for i, e := range index.Users {
		if e.UserID == userID {
			index.Users[i] = ResultIndexEntry{UserID: userID, MatchCount: len(matches), UpdatedAt: entry.UpdatedAt}
			found = true
			break
		}
	}
	if !found {
		index.Users = append(index.Users, ResultIndexEntry{UserID: userID, MatchCount: len(matches), UpdatedAt: entry.UpdatedAt})
	}
	return rc.SaveIndex(index)
}

// LoadMatches returns the cached match list for a user
func (rc *ResultCache) LoadMatches(userID string) (*CachedMatches, error) {
	data, err := os.ReadFile(rc.GetMatchesPath(userID))
	if err != nil {
		return nil, err
	}

	var entry CachedMatches
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
	}
	return &entry, nil
}

// SaveGraph replaces the cached graph snapshot
func (rc *ResultCache) SaveGraph(graph GraphSnapshot) error {
	if err := rc.EnsureCacheDir(); err != nil {
		return err
	}

	entry := CachedGraph{Graph: graph, UpdatedAt: rc.now()}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := os.WriteFile(rc.GetGraphPath(), data, 0644); err != nil {
		return err
	}

	index, err := rc.LoadIndex()
	if err != nil {
		LogWarn("Rebuilding unreadable results index: %v", err)
		index = &ResultIndex{}
	}
	index.GraphUsers = graph.UserCount()
	index.GraphUpdatedAt = entry.UpdatedAt
	return rc.SaveIndex(index)
}

// LoadGraph returns the cached graph snapshot
func (rc *ResultCache) LoadGraph() (*CachedGraph, error) {
	data, err := os.ReadFile(rc.GetGraphPath())
	if err != nil {
		return nil, err
	}

	var entry CachedGraph
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return &entry, nil
}

// ClearUser removes everything cached for a user
func (rc *ResultCache) ClearUser(userID string) error {
	if err := os.Remove(rc.GetMatchesPath(userID)); err != nil && !os.IsNotExist(err) {
		return err
	}

	index, err := rc.LoadIndex()
	if err != nil {
		return nil
	}
	kept := index.Users[:0]
	for _, e := range index.Users {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	index.Users = kept
	return rc.SaveIndex(index)
}

// ClearCache clears the cache
func (rc *ResultCache) ClearCache() error {
	index, err := rc.LoadIndex()
	if err == nil {
		for _, entry := range index.Users {
			_ = os.Remove(rc.GetMatchesPath(entry.UserID))
		}
	}
	_ = os.Remove(rc.GetGraphPath())

	if err := os.Remove(rc.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitizeFileComponent keeps user ids from escaping the cache directory
func sanitizeFileComponent(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}
