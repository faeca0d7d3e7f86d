// Package iocache keeps a NameIndex snapshot on disk, so repeated runs over
// the same reference files skip reading and normalizing them.
//
// A snapshot is keyed by a UUIDv5 of its inputs: reference paths with
// their sizes and modification times, and settings that change index keys.
// Only the latest snapshot is kept.
package iocache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnlca/pkg/config"
	"github.com/gnames/gnlca/pkg/nameidx"
	"github.com/gnames/gnsys"
	"github.com/gnames/gnuuid"
	"github.com/google/uuid"
)

// Cache stores NameIndex snapshots in a directory.
type Cache struct {
	dir string
	enc gnfmt.GNgob
}

// New creates a Cache that uses dir.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key calculates the cache key of the reference configuration.
func Key(cfg *config.Config) (uuid.UUID, error) {
	var sb strings.Builder
	ref := cfg.Reference
	add := func(kind string, paths ...string) error {
		for _, v := range paths {
			if v == "" {
				continue
			}
			abs, err := filepath.Abs(v)
			if err != nil {
				return err
			}
			info, err := os.Stat(abs)
			if err != nil {
				return err
			}
			fmt.Fprintf(&sb, "%s|%s|%d|%d\n",
				kind, abs, info.Size(), info.ModTime().UnixNano())
		}
		return nil
	}

	if err := add("primary", ref.Primary...); err != nil {
		return uuid.Nil, err
	}
	if err := add("secondary", ref.Secondary...); err != nil {
		return uuid.Nil, err
	}
	if err := add("namesdmp", ref.NamesDmp); err != nil {
		return uuid.Nil, err
	}
	if err := add("sfga", ref.SFGA); err != nil {
		return uuid.Nil, err
	}

	res := cfg.Resolve
	fmt.Fprintf(&sb, "strip=%t|canonical=%t|exceptions=%s",
		res.StripQualifiers, res.CanonicalNames,
		strings.Join(res.ExceptionTokens, ","))

	return gnuuid.New(sb.String()), nil
}

func (c *Cache) path(key uuid.UUID) string {
	return filepath.Join(c.dir, key.String()+".gob")
}

// Load returns the snapshot stored under the key. The boolean is false
// when there is no such snapshot.
func (c *Cache) Load(key uuid.UUID) (nameidx.Snapshot, bool, error) {
	var res nameidx.Snapshot
	path := c.path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return res, false, nil
	}
	if err != nil {
		return res, false, ReadError(path, err)
	}

	if err = c.enc.Decode(data, &res); err != nil {
		return res, false, ReadError(path, err)
	}

	slog.Info("Name index restored from cache", "file", path)
	return res, true, nil
}

// Save replaces the content of the cache with the snapshot.
func (c *Cache) Save(key uuid.UUID, s nameidx.Snapshot) error {
	path := c.path(key)
	if err := gnsys.MakeDir(c.dir); err != nil {
		return WriteError(path, err)
	}
	if err := gnsys.CleanDir(c.dir); err != nil {
		return WriteError(path, err)
	}

	data, err := c.enc.Encode(s)
	if err != nil {
		return WriteError(path, err)
	}

	if err = os.WriteFile(path, data, 0644); err != nil {
		return WriteError(path, err)
	}
	slog.Info("Name index saved to cache", "file", path)
	return nil
}

// Clean removes all snapshots.
func (c *Cache) Clean() error {
	return gnsys.CleanDir(c.dir)
}
