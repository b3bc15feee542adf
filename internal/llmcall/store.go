package llmcall

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"
)

// Store reads LLM call records from a JSON-lines trace file.
type Store struct {
	path string
}

// NewStore creates a new LLMCall store over the trace file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// QueryFilter specifies filters for listing LLM calls.
type QueryFilter struct {
	Operation string
	PromptKey string
	Provider  string
	Model     string
	After     *time.Time
	Before    *time.Time
	Success   *bool
	Limit     int
	Offset    int
}

func (f QueryFilter) match(c *Call) bool {
	switch {
	case f.Operation != "" && c.Operation != f.Operation:
		return false
	case f.PromptKey != "" && c.PromptKey != f.PromptKey:
		return false
	case f.Provider != "" && c.Provider != f.Provider:
		return false
	case f.Model != "" && c.Model != f.Model:
		return false
	case f.After != nil && !c.Timestamp.After(*f.After):
		return false
	case f.Before != nil && !c.Timestamp.Before(*f.Before):
		return false
	case f.Success != nil && c.Success != *f.Success:
		return false
	}
	return true
}

// Get retrieves a single LLM call by ID. Returns nil if not found.
func (s *Store) Get(id string) (*Call, error) {
	calls, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range calls {
		if calls[i].ID == id {
			return &calls[i], nil
		}
	}
	return nil, nil
}

// List returns calls matching filter, newest first.
func (s *Store) List(filter QueryFilter) ([]Call, error) {
	calls, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var out []Call
	for i := range calls {
		if filter.match(&calls[i]) {
			out = append(out, calls[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CountByPromptKey returns the number of recorded calls per prompt key.
func (s *Store) CountByPromptKey() (map[string]int, error) {
	calls, err := s.readAll()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, c := range calls {
		counts[c.PromptKey]++
	}
	return counts, nil
}

// readAll parses the trace file. A missing file holds no calls; malformed
// lines are an error naming the line number.
func (s *Store) readAll() ([]Call, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	var calls []Call
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var c Call
		if err := json.Unmarshal(sc.Bytes(), &c); err != nil {
			return nil, fmt.Errorf("trace line %d: %w", line, err)
		}
		calls = append(calls, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return calls, nil
}
