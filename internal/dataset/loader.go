// Package dataset loads text corpora for batch analysis.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// TextRecord is one document in a batch dataset.
type TextRecord struct {
	ID   string `json:"id" parquet:"id"`
	Text string `json:"text" parquet:"text"`
}

// Loader reads text records from a dataset file
type Loader struct {
	datasetPath string
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads all records from a dataset file (JSONL or Parquet)
func (l *Loader) Load() ([]TextRecord, error) {
	return l.LoadSample(0)
}

// LoadSample loads at most limit records; a limit of zero means no limit.
func (l *Loader) LoadSample(limit int) ([]TextRecord, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	case ".txt":
		return l.loadPlainText()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl, .txt)", ext)
	}
}

func (l *Loader) loadJSONL(limit int) ([]TextRecord, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []TextRecord
	scanner := bufio.NewScanner(file)

	// Large documents need a bigger line buffer than the default.
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record TextRecord
		if err := json.Unmarshal(line, &record); err != nil {
			// Skip malformed lines but continue
			slog.Warn("Skipping malformed dataset line", "line", lineNum, "error", err)
			continue
		}
		if record.ID == "" {
			record.ID = fmt.Sprintf("line-%d", lineNum)
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL dataset", "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

func (l *Loader) loadParquet(limit int) ([]TextRecord, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[TextRecord](pf)
	defer reader.Close()

	var records []TextRecord
	rows := make([]TextRecord, 128)

	for limit <= 0 || len(records) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && len(records)+n > limit {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet dataset", "total_records", len(records))
	return records, nil
}

// loadPlainText treats the whole file as one record named after the file.
func (l *Loader) loadPlainText() ([]TextRecord, error) {
	data, err := os.ReadFile(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("text file is empty")
	}

	name := strings.TrimSuffix(filepath.Base(l.datasetPath), filepath.Ext(l.datasetPath))
	return []TextRecord{{ID: name, Text: text}}, nil
}
