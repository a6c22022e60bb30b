package postgres

import (
	"fmt"
	"strconv"
	"strings"
)

// encodeVector formats vec as a pgvector literal, e.g. "[1,0.5,-2]".
// An empty vector encodes as "" and is stored as NULL by the callers.
func encodeVector(vec []float32) string {
	if len(vec) == 0 {
		return ""
	}
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// decodeVector parses a pgvector literal.
func decodeVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return []float32{}, nil
	}

	parts := strings.Split(s, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parsing vector component %d: %w", i, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}

// placeholders returns n positional parameters starting at $start,
// e.g. placeholders(3, 2) = "$2, $3, $4".
func placeholders(n, start int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
