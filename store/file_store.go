package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/harrynew/workflowbot/models"
)

const (
	defaultSnapshotFile = "server_workflows.json"
	snapshotFileKey     = "snapshotFile"
	snapshotFormatKey   = "snapshotFormat"
	defaultFormat       = "json"
	formatJSON          = "json"
	formatYAML          = "yaml"
	formatTOML          = "toml"
	checksumSuffix      = ".checksum"
)

// FileWorkflowStore persists the workflow registry as a snapshot document
// on a filesystem. It supports JSON, YAML and TOML encodings, verifies a
// SHA-256 checksum sidecar on load, writes atomically through a temp file,
// and holds a cross-process file lock while touching the real filesystem.
type FileWorkflowStore struct {
	fs       afero.Fs
	filePath string
	format   string
	flk      *flock.Flock // nil when fs is not the OS filesystem
}

// NewFileWorkflowStore creates a store backed by the OS filesystem.
// Initialize must be called before any other operation.
func NewFileWorkflowStore() *FileWorkflowStore {
	return &FileWorkflowStore{fs: afero.NewOsFs()}
}

// NewFileWorkflowStoreFs creates a store over an arbitrary filesystem,
// typically an in-memory one in tests. File locking is skipped because
// flock only makes sense on real paths.
func NewFileWorkflowStoreFs(fsys afero.Fs) *FileWorkflowStore {
	return &FileWorkflowStore{fs: fsys}
}

// Initialize configures the store. It expects a 'snapshotFile' key with the
// path to the snapshot document; 'snapshotFormat' selects json (default),
// yaml or toml.
func (s *FileWorkflowStore) Initialize(config map[string]string) error {
	if val, ok := config[snapshotFileKey]; ok && val != "" {
		s.filePath = val
	} else {
		s.filePath = defaultSnapshotFile
	}

	if val, ok := config[snapshotFormatKey]; ok && val != "" {
		formatLower := strings.ToLower(val)
		switch formatLower {
		case formatJSON, formatYAML, formatTOML:
			s.format = formatLower
		default:
			return fmt.Errorf("unsupported snapshotFormat: %s. Supported formats are json, yaml, toml", val)
		}
	} else {
		s.format = defaultFormat
	}

	if s.filePath == defaultSnapshotFile && s.format != formatJSON {
		ext := filepath.Ext(s.filePath)
		s.filePath = strings.TrimSuffix(s.filePath, ext) + "." + s.format
	}

	dir := filepath.Dir(s.filePath)
	if dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if _, osBacked := s.fs.(*afero.OsFs); osBacked {
		s.flk = flock.New(s.filePath)
	}
	return nil
}

// Path returns the snapshot file path the store was initialized with.
func (s *FileWorkflowStore) Path() string {
	return s.filePath
}

func (s *FileWorkflowStore) lock() (func(), error) {
	if s.flk == nil {
		return func() {}, nil
	}
	if err := s.flk.Lock(); err != nil {
		return nil, fmt.Errorf("could not lock snapshot file %s: %w", s.filePath, err)
	}
	return func() { _ = s.flk.Unlock() }, nil
}

// calculateChecksum computes the SHA256 checksum of the given data.
func calculateChecksum(data []byte) string {
	hasher := sha256.New()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Load reads the snapshot document and reconstructs the registry. A missing
// snapshot file is a fresh install and yields an empty registry. A checksum
// mismatch means the file was corrupted or edited without its sidecar and
// aborts the load.
func (s *FileWorkflowStore) Load() (*models.Registry, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	return Decode(doc), nil
}

// LoadDocument reads and decodes the raw snapshot document without
// rebuilding the registry. Used by the CLI inspection commands.
func (s *FileWorkflowStore) LoadDocument() (Document, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.readDocument()
}

func (s *FileWorkflowStore) readDocument() (Document, error) {
	data, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zap.L().Info("no snapshot file found, starting empty", zap.String("path", s.filePath))
			return Document{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", s.filePath, err)
	}

	checksumFilePath := s.filePath + checksumSuffix
	if exists, _ := afero.Exists(s.fs, checksumFilePath); exists {
		expected, readErr := afero.ReadFile(s.fs, checksumFilePath)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read checksum file %s: %w", checksumFilePath, readErr)
		}
		actual := calculateChecksum(data)
		if actual != strings.TrimSpace(string(expected)) {
			return nil, fmt.Errorf("checksum mismatch for %s - file is corrupt or tampered", s.filePath)
		}
	}
	// No checksum sidecar means data from before checksums were introduced;
	// allow it, the next save creates one.

	if len(data) == 0 {
		return Document{}, nil
	}

	var doc Document
	switch s.format {
	case formatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON from %s: %w", s.filePath, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML from %s: %w", s.filePath, err)
		}
	case formatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal TOML from %s: %w", s.filePath, err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format for loading: %s", s.format)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Save encodes the registry and writes the snapshot atomically: document and
// checksum both go to temp files first and are renamed into place.
func (s *FileWorkflowStore) Save(registry *models.Registry) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return s.writeDocument(Encode(registry))
}

// SaveDocument writes an already-encoded document, used when re-encoding
// between formats.
func (s *FileWorkflowStore) SaveDocument(doc Document) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()
	return s.writeDocument(doc)
}

func (s *FileWorkflowStore) writeDocument(doc Document) error {
	data, err := MarshalDocument(doc, s.format)
	if err != nil {
		return err
	}

	tempFilePath := s.filePath + ".tmp"
	checksumFilePath := s.filePath + checksumSuffix
	tempChecksumFilePath := checksumFilePath + ".tmp"

	defer func() { _ = s.fs.Remove(tempFilePath) }()
	defer func() { _ = s.fs.Remove(tempChecksumFilePath) }()

	if err := afero.WriteFile(s.fs, tempFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary snapshot file %s: %w", tempFilePath, err)
	}
	if err := afero.WriteFile(s.fs, tempChecksumFilePath, []byte(calculateChecksum(data)), 0o644); err != nil {
		return fmt.Errorf("failed to write temporary checksum file %s: %w", tempChecksumFilePath, err)
	}

	if err := s.fs.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temporary snapshot file %s to %s: %w", tempFilePath, s.filePath, err)
	}
	if err := s.fs.Rename(tempChecksumFilePath, checksumFilePath); err != nil {
		return fmt.Errorf("snapshot file %s updated but checksum file %s was not: %w - store may be inconsistent", s.filePath, checksumFilePath, err)
	}

	zap.L().Info("snapshot saved", zap.String("path", s.filePath), zap.Int("guilds", len(doc)))
	return nil
}

// MarshalDocument renders a document in the named format.
func MarshalDocument(doc Document, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot to JSON: %w", err)
		}
		return data, nil
	case formatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot to YAML: %w", err)
		}
		return data, nil
	case formatTOML:
		buf := new(bytes.Buffer)
		if err := toml.NewEncoder(buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot to TOML: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format for saving: %s", format)
	}
}

// Backup copies the current snapshot file to the destination path. The
// checksum sidecar is not copied; a restored backup gets a fresh checksum
// on its next save.
func (s *FileWorkflowStore) Backup(destinationPath string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	input, err := afero.ReadFile(s.fs, s.filePath)
	if err != nil {
		return fmt.Errorf("failed to read snapshot file %s for backup: %w", s.filePath, err)
	}
	if err := afero.WriteFile(s.fs, destinationPath, input, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file to %s: %w", destinationPath, err)
	}
	return nil
}

// Restore replaces the current snapshot with the file at the source path
// and drops the now-stale checksum sidecar.
func (s *FileWorkflowStore) Restore(sourcePath string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	sourceData, err := afero.ReadFile(s.fs, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read backup file %s: %w", sourcePath, err)
	}

	tempFilePath := s.filePath + ".tmp_restore"
	defer func() { _ = s.fs.Remove(tempFilePath) }()

	if err := afero.WriteFile(s.fs, tempFilePath, sourceData, 0o644); err != nil {
		return fmt.Errorf("failed to write restored snapshot to temporary file %s: %w", tempFilePath, err)
	}
	if err := s.fs.Rename(tempFilePath, s.filePath); err != nil {
		return fmt.Errorf("failed to replace snapshot %s with restored data from %s: %w", s.filePath, sourcePath, err)
	}

	_ = s.fs.Remove(s.filePath + checksumSuffix)
	return nil
}

// Close releases the file lock, if any. Unlock is idempotent.
func (s *FileWorkflowStore) Close() error {
	if s.flk != nil {
		return s.flk.Unlock()
	}
	return nil
}
