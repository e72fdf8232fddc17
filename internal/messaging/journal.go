package messaging

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Journal appends messages to {dir}/messages/YYYY-MM-DD.jsonl. Each daily
// file has its own mutex; the journal is a record, not the source of truth.
type Journal struct {
	dir     string
	mu      sync.Mutex
	fileMus map[string]*sync.Mutex
}

// OpenJournal creates the messages directory under dataDir.
func OpenJournal(dataDir string) (*Journal, error) {
	dir := filepath.Join(dataDir, "messages")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	return &Journal{dir: dir, fileMus: make(map[string]*sync.Mutex)}, nil
}

// fileMutex returns the mutex for a journal file. The map gains one entry
// per day.
func (j *Journal) fileMutex(name string) *sync.Mutex {
	j.mu.Lock()
	defer j.mu.Unlock()
	m, ok := j.fileMus[name]
	if !ok {
		m = &sync.Mutex{}
		j.fileMus[name] = m
	}
	return m
}

// Path returns the journal file for day.
func (j *Journal) Path(day time.Time) string {
	return filepath.Join(j.dir, day.UTC().Format("2006-01-02")+".jsonl")
}

// Append writes m to the file of its creation day.
func (j *Journal) Append(m Message) error {
	name := j.Path(m.CreatedAt)
	mu := j.fileMutex(name)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	encErr := json.NewEncoder(f).Encode(m)
	closeErr := f.Close()
	return errors.Join(encErr, closeErr)
}

// Load reads every journal file in day order. Lines that fail to decode
// are skipped and counted.
func (j *Journal) Load() (msgs []Message, skipped int, err error) {
	files, err := filepath.Glob(filepath.Join(j.dir, "*.jsonl"))
	if err != nil {
		return nil, 0, err
	}
	sort.Strings(files)

	for _, name := range files {
		n, err := j.loadFile(name, &msgs)
		skipped += n
		if err != nil {
			return msgs, skipped, err
		}
	}
	return msgs, skipped, nil
}

func (j *Journal) loadFile(name string, out *[]Message) (int, error) {
	mu := j.fileMutex(name)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.Open(name)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	skipped := 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var m Message
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			skipped++
			continue
		}
		*out = append(*out, m)
	}
	return skipped, sc.Err()
}
