// Package registry resolves package identifiers against a local mirror of
// a crates.io style index and fetches the matching source archives
package registry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/cratesweep/cratesweep/pkg/types"
)

// IndexEntry is one published version, one JSON object per index line
type IndexEntry struct {
	Name     string `json:"name"`
	Version  string `json:"vers"`
	Checksum string `json:"cksum"`
	Yanked   bool   `json:"yanked"`
}

// Index reads package metadata from the mirrored index
type Index struct {
	root string
}

// NewIndex creates an index reader rooted at dir
func NewIndex(dir string) *Index {
	return &Index{root: dir}
}

// EntryPath returns the index file holding the versions of name:
//
//	a      -> 1/a
//	ab     -> 2/ab
//	abc    -> 3/a/abc
//	serde  -> se/rd/serde
func EntryPath(name string) string {
	name = strings.ToLower(name)
	switch len(name) {
	case 0:
		return ""
	case 1:
		return filepath.Join("1", name)
	case 2:
		return filepath.Join("2", name)
	case 3:
		return filepath.Join("3", name[:1], name)
	default:
		return filepath.Join(name[:2], name[2:4], name)
	}
}

// Versions returns every entry published for name, in index order
func (ix *Index) Versions(name string) ([]IndexEntry, error) {
	rel := EntryPath(name)
	if rel == "" {
		return nil, fmt.Errorf("crate `%s` %w", name, ErrNotFound)
	}

	f, err := os.Open(filepath.Join(ix.root, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("crate `%s` %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read index for %s: %w", name, err)
	}
	defer f.Close()

	var entries []IndexEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("malformed index line for %s: %w", name, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read index for %s: %w", name, err)
	}
	return entries, nil
}

// Select picks the highest non-yanked version of pkg that satisfies its
// version requirement. An empty requirement matches every release.
func (ix *Index) Select(pkg types.PackageID) (IndexEntry, error) {
	constraint, err := Requirement(pkg.Version)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("crate `%s` %w: %v", pkg, ErrNotFound, err)
	}

	entries, err := ix.Versions(pkg.Name)
	if err != nil {
		return IndexEntry{}, err
	}

	var (
		best    IndexEntry
		bestVer *semver.Version
	)
	for _, e := range entries {
		if e.Yanked {
			continue
		}
		v, err := semver.NewVersion(e.Version)
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = e, v
		}
	}
	if bestVer == nil {
		return IndexEntry{}, fmt.Errorf("crate `%s` %w", pkg, ErrNotFound)
	}
	return best, nil
}

// Requirement parses a version requirement the way the build tool does:
// a bare version is a caret requirement.
func Requirement(version string) (*semver.Constraints, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		version = "*"
	}
	if !strings.ContainsAny(version[:1], "^~<>=*") {
		version = "^" + version
	}
	return semver.NewConstraint(version)
}
