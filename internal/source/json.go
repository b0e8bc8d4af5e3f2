package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"volSurface/internal/model"
)

// payload is the options-data response envelope.
type payload struct {
	Data      []model.QuotePoint `json:"data"`
	Timestamp string             `json:"timestamp"`
	Error     string             `json:"error"`
}

// ReadJSON decodes either a bare array of quote tuples or a {"data": [...]} envelope.
func ReadJSON(r io.Reader) ([]model.QuotePoint, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var points []model.QuotePoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("decode quotes: %w", err)
		}
		return points, nil
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if p.Error != "" {
		return nil, fmt.Errorf("source error: %s", p.Error)
	}
	return p.Data, nil
}

// ReadJSONL decodes one quote tuple per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]model.QuotePoint, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var points []model.QuotePoint
	var lineNo int
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var q model.QuotePoint
		if err := json.Unmarshal(line, &q); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		points = append(points, q)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return points, nil
}
