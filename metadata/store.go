// Package metadata persists the JSON sidecars that let split and group
// runs happen in separate process invocations.
//
// The Store is the sole read/write path to the two artifacts:
//
//   - header_info.json: header facts captured at the end of a split
//   - chunks_metadata.json: the manifest of an entire group run
//
// Writes are atomic (temp file + rename) so a crash mid-save never leaves
// a torn sidecar behind.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/hupe1980/plyshard/codec"
	"github.com/hupe1980/plyshard/internal/fs"
)

const (
	// HeaderInfoFileName is the sidecar holding the source header facts.
	HeaderInfoFileName = "header_info.json"

	// GroupManifestFileName is the sidecar holding the group run manifest.
	GroupManifestFileName = "chunks_metadata.json"
)

// ErrNoHeaderInfo is returned when a group run starts without a prior
// split's header sidecar on disk.
var ErrNoHeaderInfo = errors.New("metadata: header_info.json not found; run a split first")

// Store manages the sidecar files in a single directory.
type Store struct {
	fs    fs.FileSystem
	dir   string
	codec codec.Codec
	mu    sync.Mutex
}

// NewStore creates a sidecar store rooted at dir.
// A nil fsys falls back to the local filesystem, a nil c to codec.Default.
func NewStore(fsys fs.FileSystem, dir string, c codec.Codec) *Store {
	if fsys == nil {
		fsys = fs.Default
	}
	if c == nil {
		c = codec.Default
	}
	return &Store{fs: fsys, dir: dir, codec: c}
}

// HeaderInfoPath returns the full path of header_info.json.
func (s *Store) HeaderInfoPath() string {
	return filepath.Join(s.dir, HeaderInfoFileName)
}

// GroupManifestPath returns the full path of chunks_metadata.json.
func (s *Store) GroupManifestPath() string {
	return filepath.Join(s.dir, GroupManifestFileName)
}

// SaveHeaderInfo atomically writes header_info.json.
func (s *Store) SaveHeaderInfo(info *HeaderInfo) error {
	return s.save(s.HeaderInfoPath(), info)
}

// LoadHeaderInfo reads header_info.json, or ErrNoHeaderInfo if absent.
func (s *Store) LoadHeaderInfo() (*HeaderInfo, error) {
	var info HeaderInfo
	if err := s.load(s.HeaderInfoPath(), &info); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoHeaderInfo
		}
		return nil, err
	}
	return &info, nil
}

// SaveGroupManifest atomically writes chunks_metadata.json.
func (s *Store) SaveGroupManifest(m *GroupManifest) error {
	return s.save(s.GroupManifestPath(), m)
}

// LoadGroupManifest reads chunks_metadata.json.
func (s *Store) LoadGroupManifest() (*GroupManifest, error) {
	var m GroupManifest
	if err := s.load(s.GroupManifestPath(), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) load(path string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := fs.ReadFile(s.fs, path)
	if err != nil {
		return err
	}
	return s.codec.Unmarshal(data, v)
}

func (s *Store) save(path string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	data, err := s.codec.Marshal(v)
	if err != nil {
		return err
	}

	// Sidecars are read by humans as often as by tools.
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err == nil {
		data = pretty.Bytes()
	}

	tmpPath := path + ".tmp"
	f, err := s.fs.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		s.fs.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmpPath)
		return err
	}

	if err := s.fs.Rename(tmpPath, path); err != nil {
		s.fs.Remove(tmpPath)
		return err
	}
	return nil
}
