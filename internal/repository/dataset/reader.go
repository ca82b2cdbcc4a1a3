// Package dataset reads raw registry exports: a JSON array of records, one
// record per line (JSONL), or a Parquet file.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
)

// maxLineBytes bounds one JSONL record.
const maxLineBytes = 1 << 20

// Rejected is a record that could not be normalized.
type Rejected struct {
	// Position is the 1-based record number in the input.
	Position int
	Err      error
}

// Load reads and normalizes every record in the file at path.
// Files ending in .parquet are read as Parquet, anything else as JSON.
// Records that fail normalization are returned in rejected; they do not abort the load.
func Load(path string) (docs []business.Document, rejected []Rejected, err error) {
	var records []business.Record
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		records, err = ReadParquet(path)
	} else {
		records, err = readJSONFile(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	docs, rejected = Normalize(records)
	return docs, rejected, nil
}

func readJSONFile(path string) ([]business.Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read decodes a JSON array or a JSONL stream of records.
func Read(r io.Reader) ([]business.Record, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read: %w", err)
	}

	if first == '[' {
		var records []business.Record
		if err := json.NewDecoder(br).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
		return records, nil
	}
	return readLines(br)
}

// Normalize maps records to documents, collecting rejects with their position.
// A later record with the same ID replaces the earlier one.
func Normalize(records []business.Record) ([]business.Document, []Rejected) {
	docs := make([]business.Document, 0, len(records))
	index := make(map[string]int, len(records))
	var rejected []Rejected

	for i := range records {
		d, err := business.Normalize(&records[i])
		if err != nil {
			rejected = append(rejected, Rejected{Position: i + 1, Err: err})
			continue
		}
		if j, dup := index[d.ID]; dup {
			docs[j] = d
			continue
		}
		index[d.ID] = len(docs)
		docs = append(docs, d)
	}
	return docs, rejected
}

func readLines(br *bufio.Reader) ([]business.Record, error) {
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []business.Record
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec business.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, domain.ErrInvalidDocument, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF: // UTF-8 BOM
			if _, err := br.Discard(2); err != nil {
				return 0, err
			}
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
