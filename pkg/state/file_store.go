package state

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	configfile "github.com/goliatone/go-configfile"
	"github.com/google/uuid"
)

const (
	configExt = ".config"
	metaExt   = ".meta"

	metaSnapshotID = "snapshot_id"
	metaETag       = "etag"
	metaUpdatedAt  = "updated_at"
	metaExtra      = "extra"
)

// FileStore persists one config file per Ref under Root, at
// <Root>/<Ref.Identifier()>.config, with its Meta in a sibling .meta file
// written in the same line format.
//
// Every Save assigns a fresh snapshot id, stamps UpdatedAt and derives the
// ETag from the written content.
type FileStore struct {
	Root string
	// Options apply when loading stored configs.
	Options []configfile.Option

	mu  sync.Mutex
	now func() time.Time
}

// NewFileStore returns a store rooted at root.
func NewFileStore(root string, opts ...configfile.Option) *FileStore {
	return &FileStore{Root: root, Options: opts}
}

func (s *FileStore) Load(_ context.Context, ref Ref) (*configfile.Config, Meta, bool, error) {
	configPath, metaPath, err := s.paths(ref)
	if err != nil {
		return nil, Meta{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	opts := append([]configfile.Option{configfile.WithName(ref.Domain)}, s.Options...)
	cfg, err := configfile.Load(configPath, opts...)
	if errors.Is(err, configfile.ErrNotFound) {
		if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
			return nil, Meta{}, false, nil
		}
	}
	if err != nil {
		return nil, Meta{}, false, err
	}

	meta, err := readMeta(metaPath)
	if err != nil {
		return nil, Meta{}, false, err
	}
	return cfg, meta, true, nil
}

func (s *FileStore) Save(_ context.Context, ref Ref, cfg *configfile.Config, meta Meta) (Meta, error) {
	configPath, metaPath, err := s.paths(ref)
	if err != nil {
		return Meta{}, err
	}
	if cfg == nil {
		cfg = configfile.New()
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return Meta{}, err
	}
	sum := sha256.Sum256(buf.Bytes())

	saved := cloneMeta(meta)
	saved.SnapshotID = uuid.NewString()
	saved.ETag = hex.EncodeToString(sum[:])
	saved.UpdatedAt = s.timestamp()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return Meta{}, fmt.Errorf("state: create %q: %w", filepath.Dir(configPath), err)
	}
	if err := cfg.Write(configPath); err != nil {
		return Meta{}, err
	}
	if err := writeMeta(metaPath, saved); err != nil {
		return Meta{}, err
	}
	return cloneMeta(saved), nil
}

func (s *FileStore) paths(ref Ref) (string, string, error) {
	if s.Root == "" {
		return "", "", fmt.Errorf("state: file store root is required")
	}
	id, err := ref.Identifier()
	if err != nil {
		return "", "", err
	}
	for _, part := range strings.Split(id, "/") {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `\`) {
			return "", "", fmt.Errorf("state: invalid identifier %q", id)
		}
	}
	base := filepath.Join(s.Root, filepath.FromSlash(id))
	return base + configExt, base + metaExt, nil
}

func (s *FileStore) timestamp() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func readMeta(path string) (Meta, error) {
	cfg, err := configfile.Load(path)
	if errors.Is(err, configfile.ErrNotFound) {
		return Meta{}, nil
	}
	if err != nil {
		return Meta{}, err
	}

	meta := Meta{
		SnapshotID: cfg.GetStringOr(metaSnapshotID, ""),
		ETag:       cfg.GetStringOr(metaETag, ""),
	}
	if raw, ok := cfg.GetString(metaUpdatedAt); ok && raw != "" {
		updated, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Meta{}, fmt.Errorf("state: meta %q: %w", path, err)
		}
		meta.UpdatedAt = updated
	}
	extra := cfg.SubConfig(metaExtra)
	if extra.Len() > 0 {
		meta.Extra = make(map[string]string, extra.Len())
		for _, key := range extra.Keys() {
			meta.Extra[key] = extra.GetStringOr(key, "")
		}
	}
	return meta, nil
}

func writeMeta(path string, meta Meta) error {
	cfg := configfile.New(configfile.WithName("meta"))
	cfg.Set(metaSnapshotID, meta.SnapshotID)
	cfg.Set(metaETag, meta.ETag)
	if !meta.UpdatedAt.IsZero() {
		cfg.Set(metaUpdatedAt, meta.UpdatedAt.Format(time.RFC3339Nano))
	}
	keys := make([]string, 0, len(meta.Extra))
	for key := range meta.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cfg.Set(metaExtra+"."+key, meta.Extra[key])
	}
	return cfg.Write(path)
}
