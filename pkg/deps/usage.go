package deps

import "strings"

// Imports is the set of import paths observed in a project's sources.
type Imports struct {
	paths map[string]struct{}
}

// NewImports builds an Imports set from paths.
func NewImports(paths []string) Imports {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return Imports{paths: set}
}

// Len returns the number of distinct import paths.
func (im Imports) Len() int { return len(im.paths) }

// Uses reports whether dep counts as used. Besides an exact match, prefix
// containment is accepted in both directions: an import of "a/b/c" uses a
// requirement on "a/b", and an import of "a/b" uses a requirement on
// "a/b/c".
func (im Imports) Uses(dep string) bool {
	if _, ok := im.paths[dep]; ok {
		return true
	}
	for p := range im.paths {
		if within(p, dep) || within(dep, p) {
			return true
		}
	}
	return false
}

// within reports whether path lies below root in the slash hierarchy.
func within(path, root string) bool {
	return len(path) > len(root) && path[len(root)] == '/' && strings.HasPrefix(path, root)
}
