package dotenv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// WriteFile merges lines into the env file at path.
//
// Existing lines whose key appears in lines are replaced in place; all other
// lines (comments, blanks, unrelated keys) are kept verbatim. Keys that were
// not already present are appended in the order given. Every line is
// terminated with "\n", so running WriteFile twice with the same input
// leaves the file byte-identical.
//
// The read-merge-write cycle is not atomic with respect to other writers.
func WriteFile(path string, lines []Line) error {
	mode := fs.FileMode(0o600)
	var existing []string

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if info, statErr := os.Stat(path); statErr == nil {
			mode = info.Mode().Perm()
		}
		existing, err = splitFileLines(content)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read %s: %w", path, err)
	}

	merged := MergeLines(existing, lines)

	var buf bytes.Buffer
	for _, line := range merged {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MergeLines applies the WriteFile merge to in-memory lines.
func MergeLines(existing []string, lines []Line) []string {
	replacements := make(map[string]string, len(lines))
	for _, l := range lines {
		replacements[l.Key] = l.String()
	}

	result := make([]string, 0, len(existing)+len(lines))
	written := make(map[string]bool, len(lines))

	for _, line := range existing {
		if key, ok := KeyOf(line); ok {
			if replacement, found := replacements[key]; found {
				result = append(result, replacement)
				written[key] = true
				continue
			}
		}
		result = append(result, line)
	}

	for _, l := range lines {
		if written[l.Key] {
			continue
		}
		result = append(result, l.String())
		written[l.Key] = true
	}
	return result
}

func splitFileLines(content []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
