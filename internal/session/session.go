package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tabview-cli/internal/chart"
	"github.com/KaramelBytes/tabview-cli/internal/pipeline"
	"github.com/KaramelBytes/tabview-cli/internal/utils"
)

const sessionFileName = "session.json"

// ErrNotFound is returned when no session exists under a name.
var ErrNotFound = errors.New("session not found")

// Session remembers the controls of one viewer across recomputations.
type Session struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	DataPath string `json:"data_path,omitempty" yaml:"data_path,omitempty"`

	Columns []string `json:"columns" yaml:"columns"`
	// SelectAll overrides Columns with every column of the table at hand.
	SelectAll      bool           `json:"select_all" yaml:"select_all"`
	DropDuplicates bool           `json:"drop_duplicates" yaml:"drop_duplicates"`
	DropNulls      bool           `json:"drop_nulls" yaml:"drop_nulls"`
	GroupBy        []string       `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Aggregate      string         `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
	RowLimit       int            `json:"row_limit,omitempty" yaml:"row_limit,omitempty"`
	Chart          *chart.Request `json:"chart,omitempty" yaml:"chart,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// Not serialized: on-disk location of the session.json
	rootDir string
}

// New constructs an in-memory session showing every column. Call Save() to
// persist; rootDir may be empty for sessions that live only in memory.
func New(name, dataPath, rootDir string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		DataPath:  dataPath,
		SelectAll: true,
		CreatedAt: now,
		UpdatedAt: now,
		rootDir:   rootDir,
	}
}

// ValidateName rejects names that cannot be used as a directory.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("session name must not be empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid session name %q", name)
	}
	return nil
}

// Dir returns the directory of the named session under sessionsDir.
func Dir(sessionsDir, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(sessionsDir, name), nil
}

// Load loads a session.json from the provided directory.
func Load(dir string) (*Session, error) {
	path := filepath.Join(dir, sessionFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	s.rootDir = dir
	return &s, nil
}

// RootDir returns the on-disk session directory path.
func (s *Session) RootDir() string { return s.rootDir }

// Save writes session.json using atomic write.
func (s *Session) Save() error {
	if s.rootDir == "" {
		return errors.New("session directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(s)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, sessionFileName), data)
}

// Select replaces the column selection and turns off select-all. An empty
// selection is kept as-is; recomputing it reports EmptySelection.
func (s *Session) Select(columns ...string) {
	s.Columns = append([]string(nil), columns...)
	s.SelectAll = false
	s.touch()
}

// UseAllColumns selects every column of whatever table is viewed.
func (s *Session) UseAllColumns() {
	s.SelectAll = true
	s.touch()
}

func (s *Session) SetCleaning(dropDuplicates, dropNulls bool) {
	s.DropDuplicates, s.DropNulls = dropDuplicates, dropNulls
	s.touch()
}

// SetGrouping sets the group keys and aggregate column. Empty groupBy turns
// grouping off.
func (s *Session) SetGrouping(groupBy []string, aggregate string) {
	s.GroupBy = append([]string(nil), groupBy...)
	s.Aggregate = aggregate
	if len(s.GroupBy) == 0 {
		s.GroupBy, s.Aggregate = nil, ""
	}
	s.touch()
}

// SetRowLimit keeps the first n rows; 0 shows all.
func (s *Session) SetRowLimit(n int) error {
	if n < 0 {
		return fmt.Errorf("row limit must be >= 0, got %d", n)
	}
	s.RowLimit = n
	s.touch()
	return nil
}

// SetChart stores the chart request; nil clears it.
func (s *Session) SetChart(req *chart.Request) error {
	if req == nil {
		s.Chart = nil
		s.touch()
		return nil
	}
	kind, err := chart.ParseKind(string(req.Kind))
	if err != nil {
		return err
	}
	if req.Bins < 0 {
		return chart.ErrInvalidBins
	}
	r := *req
	r.Kind = kind
	s.Chart = &r
	s.touch()
	return nil
}

// ViewOptions resolves the remembered controls against a table's columns.
func (s *Session) ViewOptions(columns []string) pipeline.ViewOptions {
	cols := s.Columns
	if s.SelectAll {
		cols = columns
	}
	return pipeline.ViewOptions{
		Columns:        append([]string(nil), cols...),
		DropDuplicates: s.DropDuplicates,
		DropNulls:      s.DropNulls,
		GroupBy:        append([]string(nil), s.GroupBy...),
		Aggregate:      s.Aggregate,
		RowLimit:       s.RowLimit,
	}
}

// YAML renders the session for display.
func (s *Session) YAML() ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

func (s *Session) touch() { s.UpdatedAt = time.Now() }

// List loads every session under sessionsDir, sorted by name. Directories
// without a readable session.json are skipped.
func List(sessionsDir string) ([]*Session, error) {
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	var out []*Session
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		s, err := Load(filepath.Join(sessionsDir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
