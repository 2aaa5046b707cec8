package cache

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/runoshun/git-qa/internal/domain"
)

// Ensure TrackerCache implements domain.TrackerCache.
var _ domain.TrackerCache = (*TrackerCache)(nil)

// TrackerCache caches tracker lookups.
type TrackerCache struct {
	dir string // <cache>/jira
}

// NewTrackerCache creates a TrackerCache under cacheDir.
func NewTrackerCache(cacheDir string) *TrackerCache {
	return &TrackerCache{dir: domain.TrackerCacheDir(cacheDir)}
}

// Transitions returns issue type -> status name -> transition id for project.
// A project never saved yields an empty map.
func (c *TrackerCache) Transitions(project string) map[string]map[string]string {
	transitions := make(map[string]map[string]string)
	content := readFile(domain.TransitionsCachePath(c.dir, project))
	if content == nil {
		return transitions
	}
	if err := json.Unmarshal(content, &transitions); err != nil || transitions == nil {
		return make(map[string]map[string]string)
	}
	return transitions
}

// SaveTransitions stores the transitions of project.
func (c *TrackerCache) SaveTransitions(project string, transitions map[string]map[string]string) error {
	content, err := json.Marshal(transitions)
	if err != nil {
		return fmt.Errorf("marshal transitions: %w", err)
	}
	return WriteAtomic(domain.TransitionsCachePath(c.dir, project), content)
}

func (c *TrackerCache) userIDsPath() string {
	return filepath.Join(c.dir, domain.UserIDsFile)
}

func (c *TrackerCache) userIDs() map[string]string {
	ids := make(map[string]string)
	content := readFile(c.userIDsPath())
	if content == nil {
		return ids
	}
	if err := json.Unmarshal(content, &ids); err != nil || ids == nil {
		return make(map[string]string)
	}
	return ids
}

// UserID returns the account id cached for the credential pair, or an empty string.
func (c *TrackerCache) UserID(email, token string) string {
	return c.userIDs()[UserKey(email, token)]
}

// SaveUserID stores the account id of the credential pair.
func (c *TrackerCache) SaveUserID(email, token, id string) error {
	ids := c.userIDs()
	ids[UserKey(email, token)] = id
	content, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal user ids: %w", err)
	}
	return WriteAtomic(c.userIDsPath(), content)
}

// UserKey derives the cache key of a credential pair: base64url(sha256(email+token)).
func UserKey(email, token string) string {
	sum := sha256.Sum256([]byte(email + token))
	return base64.URLEncoding.EncodeToString(sum[:])
}
