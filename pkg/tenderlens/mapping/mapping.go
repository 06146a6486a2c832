package mapping

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cognicore/tenderlens/pkg/tenderlens/internalerr"
)

// Mapping maps raw, typo-laden names to their canonical form.
type Mapping map[string]string

// Load reads a mapping file from disk.
// Format, one entry per line: "<raw>": "<canonical>",
func Load(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: mapping file %s", internalerr.ErrResourceMissing, path)
		}
		return nil, fmt.Errorf("open mapping %s: %w", path, err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse mapping %s: %w", path, err)
	}
	return m, nil
}

// Parse reads mapping entries from r. Lines without a colon are skipped.
func Parse(r io.Reader) (Mapping, error) {
	m := make(Mapping)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		raw, canonical, ok := splitEntry(line)
		if !ok {
			continue
		}
		raw = cleanSide(raw)
		if raw == "" {
			continue
		}
		m[raw] = cleanSide(canonical)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// splitEntry splits a line into its raw and canonical halves. A quoted key
// may itself contain colons, so the `":` boundary is preferred over the first
// bare colon.
func splitEntry(line string) (string, string, bool) {
	if strings.HasPrefix(line, `"`) {
		if i := strings.Index(line[1:], `":`); i >= 0 {
			cut := i + 1
			return line[:cut+1], line[cut+2:], true
		}
	}
	return strings.Cut(line, ":")
}

// cleanSide strips surrounding whitespace, trailing commas and quotes.
func cleanSide(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ",")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// Apply returns the canonical name for raw, or raw itself when unmapped.
func (m Mapping) Apply(raw string) string {
	if canonical, ok := m[raw]; ok {
		return canonical
	}
	return raw
}

// Lookup returns the canonical name and whether raw was mapped.
func (m Mapping) Lookup(raw string) (string, bool) {
	canonical, ok := m[raw]
	return canonical, ok
}
