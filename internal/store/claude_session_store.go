package store

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"switchboard/internal/types"
)

const claudeSessionSchemaVersion = 1

// FileClaudeSessionStore keeps one JSON file per working directory under a
// state root, so session history survives daemon restarts and never mixes
// across projects.
type FileClaudeSessionStore struct {
	root string
	mu   sync.Mutex
}

type claudeSessionFile struct {
	Version int                          `json:"version"`
	Cwd     string                       `json:"cwd"`
	Records []*types.ClaudeSessionRecord `json:"records"`
}

func NewFileClaudeSessionStore(root string) *FileClaudeSessionStore {
	return &FileClaudeSessionStore{root: root}
}

func (s *FileClaudeSessionStore) Upsert(ctx context.Context, record *types.ClaudeSessionRecord) (*types.ClaudeSessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record == nil || strings.TrimSpace(record.TerminalID) == "" {
		return nil, errors.New("session record requires terminal id")
	}
	if strings.TrimSpace(record.Cwd) == "" {
		return nil, errors.New("session record requires working directory")
	}
	normalized := normalizeClaudeSession(record)

	file, err := s.load(normalized.Cwd)
	if err != nil {
		return nil, err
	}
	updated := false
	for i, existing := range file.Records {
		if existing.TerminalID == normalized.TerminalID {
			if normalized.SessionID == "" {
				normalized.SessionID = existing.SessionID
			}
			if normalized.StartedAt.IsZero() {
				normalized.StartedAt = existing.StartedAt
			}
			file.Records[i] = normalized
			updated = true
			break
		}
	}
	if !updated {
		file.Records = append(file.Records, normalized)
	}
	if err := s.save(normalized.Cwd, file); err != nil {
		return nil, err
	}
	return types.CloneClaudeSessionRecord(normalized), nil
}

func (s *FileClaudeSessionStore) UpdateSessionID(ctx context.Context, cwd, terminalID, sessionID string) (*types.ClaudeSessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, errors.New("session id is required")
	}
	cwd = normalizeCwd(cwd)
	file, err := s.load(cwd)
	if err != nil {
		return nil, err
	}
	for i, existing := range file.Records {
		if existing.TerminalID == terminalID {
			next := types.CloneClaudeSessionRecord(existing)
			next.SessionID = sessionID
			next.UpdatedAt = time.Now().UTC()
			file.Records[i] = next
			if err := s.save(cwd, file); err != nil {
				return nil, err
			}
			return types.CloneClaudeSessionRecord(next), nil
		}
	}
	return nil, errors.New("session record not found")
}

func (s *FileClaudeSessionStore) Get(ctx context.Context, cwd, terminalID string) (*types.ClaudeSessionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(normalizeCwd(cwd))
	if err != nil {
		return nil, false, err
	}
	for _, record := range file.Records {
		if record.TerminalID == terminalID {
			return types.CloneClaudeSessionRecord(record), true, nil
		}
	}
	return nil, false, nil
}

func (s *FileClaudeSessionStore) ListForCwd(ctx context.Context, cwd string) ([]*types.ClaudeSessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(normalizeCwd(cwd))
	if err != nil {
		return nil, err
	}
	out := make([]*types.ClaudeSessionRecord, 0, len(file.Records))
	for _, record := range file.Records {
		out = append(out, types.CloneClaudeSessionRecord(record))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// MostRecent returns the newest record for the directory that actually
// captured a session id; resume has nothing to offer without one.
func (s *FileClaudeSessionStore) MostRecent(ctx context.Context, cwd string) (*types.ClaudeSessionRecord, bool, error) {
	records, err := s.ListForCwd(ctx, cwd)
	if err != nil {
		return nil, false, err
	}
	for _, record := range records {
		if strings.TrimSpace(record.SessionID) != "" {
			return record, true, nil
		}
	}
	return nil, false, nil
}

func (s *FileClaudeSessionStore) Delete(ctx context.Context, cwd, terminalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cwd = normalizeCwd(cwd)
	file, err := s.load(cwd)
	if err != nil {
		return err
	}
	filtered := file.Records[:0]
	found := false
	for _, record := range file.Records {
		if record.TerminalID == terminalID {
			found = true
			continue
		}
		filtered = append(filtered, record)
	}
	if !found {
		return errors.New("session record not found")
	}
	file.Records = filtered
	return s.save(cwd, file)
}

func (s *FileClaudeSessionStore) load(cwd string) (*claudeSessionFile, error) {
	file := &claudeSessionFile{
		Version: claudeSessionSchemaVersion,
		Cwd:     cwd,
		Records: []*types.ClaudeSessionRecord{},
	}
	ok, err := readJSONIfExists(s.pathFor(cwd), file)
	if err != nil {
		return nil, err
	}
	if !ok {
		return file, nil
	}
	if file.Version == 0 {
		file.Version = claudeSessionSchemaVersion
	}
	return file, nil
}

func (s *FileClaudeSessionStore) save(cwd string, file *claudeSessionFile) error {
	file.Version = claudeSessionSchemaVersion
	file.Cwd = cwd
	return writeJSONAtomic(s.pathFor(cwd), file)
}

// pathFor maps a working directory to a stable file name. The base name is
// kept readable and a hash of the full path avoids collisions between
// directories that share one.
func (s *FileClaudeSessionStore) pathFor(cwd string) string {
	base := slugify(filepath.Base(cwd))
	if base == "" {
		base = "root"
	}
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(cwd))
	name := fmt.Sprintf("%s-%08x.json", base, hash.Sum32())
	return filepath.Join(s.root, name)
}

func normalizeCwd(cwd string) string {
	cwd = strings.TrimSpace(cwd)
	if cwd == "" {
		return string(os.PathSeparator)
	}
	return filepath.Clean(cwd)
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func normalizeClaudeSession(record *types.ClaudeSessionRecord) *types.ClaudeSessionRecord {
	out := types.CloneClaudeSessionRecord(record)
	out.TerminalID = strings.TrimSpace(out.TerminalID)
	out.SessionID = strings.TrimSpace(out.SessionID)
	out.Cwd = normalizeCwd(out.Cwd)
	now := time.Now().UTC()
	if out.StartedAt.IsZero() {
		out.StartedAt = now
	}
	out.UpdatedAt = now
	return out
}
