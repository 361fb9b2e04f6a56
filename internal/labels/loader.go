package labels

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"detectd/internal/common/fsutil"
	"detectd/pkg/types"
)

// Map is the immutable class index -> label lookup shared by all requests.
type Map struct {
	byIndex map[string]string
	entries []types.LabelEntry // sorted by numeric index
}

// Load builds a Map from two parallel files: line i of labelPath is the label
// for the index on line i of indexPath.
func Load(labelPath, indexPath string) (Map, error) {
	names, err := readLines(labelPath)
	if err != nil {
		return Map{}, fmt.Errorf("labels: %w", err)
	}
	indexes, err := readLines(indexPath)
	if err != nil {
		return Map{}, fmt.Errorf("label indexes: %w", err)
	}
	return FromLines(names, indexes)
}

// FromLines zips already-read label and index lines into a Map.
func FromLines(names, indexes []string) (Map, error) {
	if len(names) != len(indexes) {
		return Map{}, fmt.Errorf("label/index mismatch: %d labels, %d indexes", len(names), len(indexes))
	}
	m := Map{byIndex: make(map[string]string, len(names))}
	for i := range names {
		idx := strings.TrimSpace(indexes[i])
		name := strings.TrimSpace(names[i])
		if idx == "" {
			return Map{}, fmt.Errorf("line %d: empty index", i+1)
		}
		if _, err := strconv.Atoi(idx); err != nil {
			return Map{}, fmt.Errorf("line %d: index %q is not numeric", i+1, idx)
		}
		if _, dup := m.byIndex[idx]; dup {
			return Map{}, fmt.Errorf("line %d: duplicate index %s", i+1, idx)
		}
		m.byIndex[idx] = name
		m.entries = append(m.entries, types.LabelEntry{Index: idx, Label: name})
	}
	sort.SliceStable(m.entries, func(a, b int) bool {
		x, _ := strconv.Atoi(m.entries[a].Index)
		y, _ := strconv.Atoi(m.entries[b].Index)
		return x < y
	})
	return m, nil
}

// Lookup returns the label for an index string such as "3".
func (m Map) Lookup(index string) (string, bool) {
	l, ok := m.byIndex[index]
	return l, ok
}

// Label returns the label for a numeric class id as emitted by the graph.
func (m Map) Label(class int) (string, bool) {
	return m.Lookup(strconv.Itoa(class))
}

func (m Map) Len() int { return len(m.entries) }

// Entries returns a copy of the map sorted by numeric index.
func (m Map) Entries() []types.LabelEntry {
	out := make([]types.LabelEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// readLines returns the file's lines with trailing blank lines dropped.
func readLines(path string) ([]string, error) {
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
