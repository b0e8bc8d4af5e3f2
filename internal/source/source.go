package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"volSurface/internal/model"
)

// Format identifies an input encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ParseFormat resolves an explicit format name, or infers one from the path extension.
func ParseFormat(name, path string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jsonl", ".ndjson":
			return FormatJSONL, nil
		case ".csv":
			return FormatCSV, nil
		default:
			return FormatJSON, nil
		}
	}

	switch Format(name) {
	case FormatJSON, FormatJSONL, FormatCSV:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown input format: %s", name)
	}
}

// ReadFile loads a quote batch from path.
func ReadFile(path string, format Format) ([]model.QuotePoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		return ReadJSON(file)
	case FormatJSONL:
		return ReadJSONL(file)
	case FormatCSV:
		return ReadCSV(file)
	default:
		return nil, fmt.Errorf("unknown input format: %s", format)
	}
}
