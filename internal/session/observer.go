package session

import "github.com/iksnae/openup-cli/internal"

// CacheObserver writes last-known-good results to a ResultCache
type CacheObserver struct {
	cache *internal.ResultCache
}

// NewCacheObserver wraps cache as a ResultObserver
func NewCacheObserver(cache *internal.ResultCache) *CacheObserver {
	return &CacheObserver{cache: cache}
}

// MatchesUpdated caches the user's latest matches
func (o *CacheObserver) MatchesUpdated(userID string, matches []internal.MatchResult) {
	if err := o.cache.SaveMatches(userID, matches); err != nil {
		internal.LogWarn("Failed to cache matches for %s: %v", userID, err)
	}
}

// GraphUpdated caches the latest graph snapshot
func (o *CacheObserver) GraphUpdated(graph internal.GraphSnapshot) {
	if err := o.cache.SaveGraph(graph); err != nil {
		internal.LogWarn("Failed to cache graph: %v", err)
	}
}

// LoggedOut drops the user's cached results
func (o *CacheObserver) LoggedOut(userID string) {
	if err := o.cache.ClearUser(userID); err != nil {
		internal.LogWarn("Failed to clear cached results for %s: %v", userID, err)
	}
}

// PreloadFromCache seeds the controller with cached results for the current
// identity, if any exist
func PreloadFromCache(c *Controller, cache *internal.ResultCache) {
	identity := c.Identity()
	if identity == nil {
		return
	}
	if cached, err := cache.LoadMatches(identity.UserID); err == nil {
		c.Preload(cached.Matches, nil, cached.UpdatedAt)
	}
	if cached, err := cache.LoadGraph(); err == nil {
		c.Preload(nil, cached.Graph, cached.UpdatedAt)
	}
}
