package manifest

import "strings"

// Match reports whether name matches pattern, where '*' matches any
// run of characters, path separators included. An empty pattern
// matches everything.
//
// This mirrors the include filter semantics of the upstream archive
// tooling, which treats keys as flat strings rather than paths.
func Match(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == name
	}
	if !strings.HasPrefix(name, parts[0]) {
		return false
	}
	name = name[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(name, part)
		if idx < 0 {
			return false
		}
		name = name[idx+len(part):]
	}
	return strings.HasSuffix(name, parts[len(parts)-1])
}
