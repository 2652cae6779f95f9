package cache

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "sjsage522/listingwatcher/pkg/errors"
)

// identifierEscaper keeps multi-line identifiers on a single physical line.
var (
	identifierEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	identifierUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

// SeenCache is the ordered, file-backed list of identifiers already notified.
// It is meant for a single process per file: nothing is locked.
type SeenCache struct {
	path  string
	items []string
}

// LoadSeenCache reads the cache file at path, starting empty when the file
// does not exist yet. The containing directory is created if missing.
func LoadSeenCache(path string) (*SeenCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.NewCache("seen", "failed to create cache directory", err)
	}

	c := &SeenCache{path: path, items: []string{}}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, apperrors.NewCache("seen", "failed to open "+path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		c.items = append(c.items, identifierUnescaper.Replace(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.NewCache("seen", "failed to read "+path, err)
	}

	return c, nil
}

// Path returns the backing file
func (c *SeenCache) Path() string {
	return c.path
}

// Contains reports whether id exactly matches a stored identifier
func (c *SeenCache) Contains(id string) bool {
	return slices.Contains(c.items, id)
}

// Add appends id in memory. Duplicates are not filtered.
func (c *SeenCache) Add(id string) {
	c.items = append(c.items, id)
}

// Len returns the number of stored identifiers
func (c *SeenCache) Len() int {
	return len(c.items)
}

// Items returns a copy of the identifiers in insertion order
func (c *SeenCache) Items() []string {
	return slices.Clone(c.items)
}

// Save overwrites the backing file with every identifier, one per line
func (c *SeenCache) Save() error {
	var buf bytes.Buffer
	for _, item := range c.items {
		buf.WriteString(identifierEscaper.Replace(item))
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0o644); err != nil {
		return apperrors.NewCache("seen", "failed to write "+c.path, err)
	}
	return nil
}
