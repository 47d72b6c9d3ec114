package watch

import "path/filepath"

// NameFilter accepts paths whose base name matches one of its glob patterns.
// An empty filter accepts everything.
type NameFilter []string

func (f NameFilter) Matches(path string) bool {
	if len(f) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range f {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
