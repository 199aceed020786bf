package store

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// wal is the append-only WAL writer. It is also used by recovery (reads)
// and compaction (rewrites the file under a new handle). Writes are
// fsynced per record, trading some throughput for a durability guarantee
// that holds across process crashes.
type wal struct {
	mu   sync.Mutex
	file *os.File
	path string
}

func openWAL(path string) (*wal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &wal{file: f, path: path}, nil
}

// append serializes rec as one NDJSON line and fsyncs it before returning.
func (w *wal) append(rec record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if _, err := w.file.Write(data); err != nil {
		return err
	}
	return w.file.Sync() // flush to disk before the in-memory mutation is applied
}

// readAll scans every record from the start of the file. Lines that fail
// to parse, or that lack the required action/key fields, are skipped with
// a warning rather than aborting recovery.
func (w *wal) readAll() ([]record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var records []record
	scanner := bufio.NewScanner(w.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(line, &r); err != nil {
			log.Warn().Err(err).Str("wal", w.path).Msg("skipping malformed WAL record")
			continue
		}
		if r.Action == "" || r.Key == "" {
			log.Warn().Str("wal", w.path).Str("line", string(line)).Msg("skipping WAL record missing required fields")
			continue
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if _, err := w.file.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}
	return records, nil
}

// count returns the number of well-formed records currently in the file.
// Used by the compactor to set log_size after a rewrite.
func (w *wal) count() (int, error) {
	records, err := w.readAll()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (w *wal) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
