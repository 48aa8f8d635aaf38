package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// DiscoveryRecord is the durable form of a finished search: what was found,
// how well it fits, and how much it cost to find.
type DiscoveryRecord struct {
	Name        string    `json:"name"`
	Formula     string    `json:"formula"`
	Fingerprint string    `json:"fingerprint"`
	MSE         float64   `json:"mse"`
	Curiosity   float64   `json:"curiosity"`
	EvalsUsed   int64     `json:"evals_used"`
	Seed        int64     `json:"seed"`
	CreatedAt   time.Time `json:"created_at"`
}

// CuriosityFromMSE maps an error onto (0,1]: a perfect fit scores 1, and the
// score decays smoothly as the error grows. Monotone, so ranking by curiosity
// descending equals ranking by error ascending.
func CuriosityFromMSE(mse float64) float64 {
	return 1.0 / (1.0 + mse)
}

// NewDiscovery packages a finished search result under a task name.
func NewDiscovery(name string, seed int64, res SearchResult) DiscoveryRecord {
	return DiscoveryRecord{
		Name:        name,
		Formula:     res.Formula,
		Fingerprint: res.Best.Fingerprint(),
		MSE:         res.Fitness,
		Curiosity:   CuriosityFromMSE(res.Fitness),
		EvalsUsed:   res.EvalsUsed,
		Seed:        seed,
		CreatedAt:   time.Now().UTC(),
	}
}

// DiscoverySink receives finished discoveries. The harness writes JSONL; tests
// substitute an in-memory sink.
type DiscoverySink interface {
	Append(rec DiscoveryRecord) error
	Close() error
}

// JSONLSink appends one JSON object per line to a file. Appends are
// mutex-guarded so concurrent runs never interleave partial lines.
type JSONLSink struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// NewJSONLSink opens (or creates) the discovery log for appending.
func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open discovery log: %w", err)
	}
	return &JSONLSink{f: f, w: bufio.NewWriter(f)}, nil
}

func (s *JSONLSink) Append(rec DiscoveryRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal discovery: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	// Flush per record: the log doubles as a crash-safe journal.
	return s.w.Flush()
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// LoadRecentDiscoveries reads the last N records from a discovery log
// (simple + safe).
func LoadRecentDiscoveries(path string, limit int) ([]DiscoveryRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Ring buffer of last N lines
	ring := make([]string, 0, limit)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if len(ring) < limit {
			ring = append(ring, line)
		} else {
			// rotate
			copy(ring, ring[1:])
			ring[len(ring)-1] = line
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	out := make([]DiscoveryRecord, 0, len(ring))
	for _, line := range ring {
		var rec DiscoveryRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			// don't crash; just skip bad lines
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// SubSeedFromFormula derives a stable follow-up seed from formula text, so a
// refinement run of the same discovery is reproducible across processes.
func SubSeedFromFormula(formula string) int64 {
	return int64(fnv1a64(formula) & 0x7fffffffffffffff)
}
