// Package store implements the per-team durable storage engine: directory
// layout, message/event/ack indexes (monolithic or SHA-1-prefix sharded),
// inbox/event/dead-letter logs, task snapshots, and the cooldown ledger.
package store

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/fractalmind/teamchat-go/internal/fsutil"
)

// shardKey returns the two-hex-character shard key for id, the first byte
// of SHA-1(id).
func shardKey(id string) string {
	sum := sha1.Sum([]byte(id))
	return hex.EncodeToString(sum[:1])
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ShardedIndex is a JSON-backed map index keyed by record id. It supports
// both a monolithic file and a sharded directory layout on read: if the
// shard directory exists, shards are authoritative; otherwise the
// monolithic file is consulted. Writes always go to the sharded layout,
// creating it on first use.
type ShardedIndex[T any] struct {
	root string // e.g. teams/<team>/state
	name string // e.g. "message-index"
}

// NewShardedIndex returns an index named name rooted at root (the team's
// state directory).
func NewShardedIndex[T any](root, name string) *ShardedIndex[T] {
	return &ShardedIndex[T]{root: root, name: name}
}

func (s *ShardedIndex[T]) shardsDir() string {
	return filepath.Join(s.root, s.name+"-shards")
}

func (s *ShardedIndex[T]) monolithicPath() string {
	return filepath.Join(s.root, s.name+".json")
}

func (s *ShardedIndex[T]) shardPath(id string) string {
	return filepath.Join(s.shardsDir(), shardKey(id)+".json")
}

func loadMap[T any](path string) (map[string]T, error) {
	m := map[string]T{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	}
	if err := fsutil.ReadJSON(path, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]T{}
	}
	return m, nil
}

// Get returns the entry for id, if present, using whichever layout is
// currently in use.
func (s *ShardedIndex[T]) Get(id string) (T, bool, error) {
	var zero T
	if dirExists(s.shardsDir()) {
		m, err := loadMap[T](s.shardPath(id))
		if err != nil {
			return zero, false, err
		}
		v, ok := m[id]
		return v, ok, nil
	}
	m, err := loadMap[T](s.monolithicPath())
	if err != nil {
		return zero, false, err
	}
	v, ok := m[id]
	return v, ok, nil
}

// Has reports whether id is present in the index.
func (s *ShardedIndex[T]) Has(id string) (bool, error) {
	_, ok, err := s.Get(id)
	return ok, err
}

// Put inserts or replaces the entry for id, always writing the sharded
// layout (the hot-path form).
func (s *ShardedIndex[T]) Put(id string, v T) error {
	path := s.shardPath(id)
	m, err := loadMap[T](path)
	if err != nil {
		return err
	}
	m[id] = v
	return fsutil.WriteJSONAtomic(path, m)
}

// All loads every entry across the whole index, regardless of layout.
func (s *ShardedIndex[T]) All() (map[string]T, error) {
	if dirExists(s.shardsDir()) {
		entries, err := os.ReadDir(s.shardsDir())
		if err != nil {
			return nil, err
		}
		combined := map[string]T{}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			m, err := loadMap[T](filepath.Join(s.shardsDir(), e.Name()))
			if err != nil {
				return nil, err
			}
			for k, v := range m {
				combined[k] = v
			}
		}
		return combined, nil
	}
	return loadMap[T](s.monolithicPath())
}

// ReplaceAll rewrites the whole index from all, in the sharded layout,
// removing any shard files no longer needed. Each shard file is written
// atomically; the set of shards is replaced one file at a time, not as a
// single atomic step. Used by rehydrate.
func (s *ShardedIndex[T]) ReplaceAll(all map[string]T) error {
	shards := map[string]map[string]T{}
	for id, v := range all {
		k := shardKey(id)
		if shards[k] == nil {
			shards[k] = map[string]T{}
		}
		shards[k][id] = v
	}

	if err := os.MkdirAll(s.shardsDir(), 0o755); err != nil {
		return err
	}

	existing, err := os.ReadDir(s.shardsDir())
	if err != nil {
		return err
	}
	keep := map[string]bool{}
	for k := range shards {
		keep[k+".json"] = true
	}
	for _, e := range existing {
		if e.IsDir() || keep[e.Name()] {
			continue
		}
		if err := os.Remove(filepath.Join(s.shardsDir(), e.Name())); err != nil {
			return err
		}
	}

	for k, m := range shards {
		if err := fsutil.WriteJSONAtomic(filepath.Join(s.shardsDir(), k+".json"), m); err != nil {
			return err
		}
	}
	return nil
}
