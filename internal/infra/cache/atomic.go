// Package cache provides the file-backed local cache of git-qa.
//
// Layout:
//
//	<cache>/
//	  github/<org>/
//	    config.json                 global config documents keyed by source
//	  github/<org>/<repo>/
//	    commits/<hash>/<number>     zero-byte marker linking a commit to a pull request
//	    commits/<hash>/no_pr.json   bare-commit candidate
//	    pull_requests/<number>.json pull request candidate
//	    team_members/<team>.txt     newline-separated roster
//	  jira/
//	    user_ids.json               hashed credential -> account id
//	    projects/<project>/transitions.json
//
// Reads never fail: a missing or unreadable entry is reported as absent.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tmpPrefix marks in-flight temporary files. Readers skip entries with this prefix.
const tmpPrefix = ".tmp-"

// WriteAtomic writes data to path through a synced temporary file in the same
// directory followed by a rename, so readers see either the old or the new content.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// readFile returns the content of path, or nil if it cannot be read.
func readFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return data
}

func isTemp(name string) bool {
	return strings.HasPrefix(name, tmpPrefix)
}

// Purge removes the whole cache directory.
func Purge(cacheDir string) error {
	if cacheDir == "" || cacheDir == "/" {
		return fmt.Errorf("refusing to purge %q", cacheDir)
	}
	if err := os.RemoveAll(cacheDir); err != nil {
		return fmt.Errorf("remove cache directory: %w", err)
	}
	return nil
}
