// Package store persists the full task set as JSON lines, one task per line.
package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tgienger/todo/internal/models"
)

// Store loads and saves the complete task set. Save replaces everything.
type Store interface {
	Load(ctx context.Context) ([]models.Task, error)
	Save(ctx context.Context, tasks []models.Task) error
}

// Sequencer is implemented by stores that remember the highest id ever
// issued, so ids freed by deletion are never handed out again.
type Sequencer interface {
	LastID(ctx context.Context) (int, error)
	SetLastID(ctx context.Context, id int) error
}

// CorruptRecordError reports a line that does not decode into a task
type CorruptRecordError struct {
	Path string
	Line int
	Err  error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %v", e.Path, e.Line, models.ErrCorruptRecord, e.Err)
}

func (e *CorruptRecordError) Unwrap() []error {
	return []error{models.ErrCorruptRecord, e.Err}
}

// FileStore keeps tasks in a UTF-8 JSON-lines file
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file and its
// parent directories are created on first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every task in file order. A missing file is an empty set.
func (s *FileStore) Load(_ context.Context) ([]models.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Task{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	tasks := []models.Task{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		t, err := decodeTask(line)
		if err != nil {
			return nil, &CorruptRecordError{Path: s.path, Line: lineNo, Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.path, err)
	}
	return tasks, nil
}

// Save overwrites the file with one encoded task per line, in the given order
func (s *FileStore) Save(_ context.Context, tasks []models.Task) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range tasks {
		if err := enc.Encode(&tasks[i]); err != nil {
			return fmt.Errorf("encode task %d: %w", tasks[i].ID, err)
		}
	}
	if err := writeFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// seqPath holds the high-water id next to the record file
func (s *FileStore) seqPath() string {
	return s.path + ".lastid"
}

// LastID returns the highest id recorded by SetLastID, or 0 if none was
func (s *FileStore) LastID(_ context.Context) (int, error) {
	data, err := os.ReadFile(s.seqPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", s.seqPath(), err)
	}
	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", s.seqPath(), models.ErrCorruptRecord, err)
	}
	return id, nil
}

// SetLastID records id as the highest id issued
func (s *FileStore) SetLastID(_ context.Context, id int) error {
	if err := writeFileAtomic(s.seqPath(), []byte(strconv.Itoa(id)+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.seqPath(), err)
	}
	return nil
}

// decodeTask parses one record and checks the fields a task cannot lack
func decodeTask(line []byte) (models.Task, error) {
	var presence struct {
		ID   *int    `json:"id"`
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(line, &presence); err != nil {
		return models.Task{}, err
	}
	if presence.ID == nil {
		return models.Task{}, errors.New("missing id")
	}
	if presence.Name == nil {
		return models.Task{}, errors.New("missing name")
	}

	var t models.Task
	if err := json.Unmarshal(line, &t); err != nil {
		return models.Task{}, err
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
