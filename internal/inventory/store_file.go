package inventory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// FileStore persists the document as an indented JSON file. Saves go through
// a temp file and rename, so readers never observe a half-written document.
type FileStore struct {
	path string
	perm fs.FileMode
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, perm: 0o644}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyDocument(), nil
	}
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decodeDocument(b)
}

func (s *FileStore) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(s.path)+"."+uuid.NewString()+".tmp")
	if err := writeSynced(tmp, b, s.perm); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func writeSynced(name string, b []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func encodeDocument(doc Document) ([]byte, error) {
	b, err := json.MarshalIndent(doc.clone(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalogue: %w", err)
	}
	return append(b, '\n'), nil
}

// decodeDocument treats an empty payload as a fresh catalogue. A document
// without a games key decodes with nil Games; EnsureInitialized repairs it.
func decodeDocument(b []byte) (Document, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return emptyDocument(), nil
	}

	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	for i := range doc.Games {
		if doc.Games[i].Platforms == nil {
			doc.Games[i].Platforms = []string{}
		}
	}
	return doc, nil
}
