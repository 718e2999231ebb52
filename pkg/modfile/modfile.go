package modfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/matzehuels/gomodwatch/pkg/errors"
)

// Filename is the manifest file name looked up by [Read].
const Filename = "go.mod"

// ErrNotFound is returned (wrapped) by [Read] when the directory has no go.mod.
var ErrNotFound = errors.New("manifest not found")

// File is the parsed form of a go.mod file.
//
// A File is a value snapshot: nothing in this package mutates it after
// [Parse] returns.
type File struct {
	Module    string    // Module path from the module directive
	Go        string    // Language version from the go directive
	Toolchain string    // Toolchain name from the toolchain directive, if any
	Require   []Require // Require directives in source order
	Replace   []Replace // Replace directives in source order
	Exclude   []Exclude // Exclude directives in source order
	Retract   []Retract // Retract directives in source order
}

// Require is a single requirement.
type Require struct {
	Path     string `json:"path"`
	Version  string `json:"version"`
	Indirect bool   `json:"indirect"`
}

// ModVersion is a module path with an optional version.
type ModVersion struct {
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
}

// Replace substitutes New for Old. An empty Old.Version applies the
// replacement to every version of Old.Path.
type Replace struct {
	Old ModVersion `json:"old"`
	New ModVersion `json:"new"`
}

// Exclude removes one version of a module from consideration.
type Exclude struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Retract withdraws a version or a bracketed version range ("[v1.0.0, v1.1.0]").
type Retract struct {
	Version   string `json:"version"`
	Rationale string `json:"rationale,omitempty"`
}

// Read parses the go.mod file in dir.
//
// A missing file yields an error that matches [ErrNotFound] with errors.Is
// and carries the MANIFEST_NOT_FOUND code. Other read failures are returned
// as-is. The content itself never causes an error.
func Read(dir string) (*File, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ErrCodeManifestNotFound, ErrNotFound, "no %s in %s", Filename, dir)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

// Direct returns the requirements not marked // indirect.
func (f *File) Direct() []Require {
	var out []Require
	for _, r := range f.Require {
		if !r.Indirect {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns the first requirement for path.
func (f *File) Lookup(path string) (Require, bool) {
	for _, r := range f.Require {
		if r.Path == path {
			return r, true
		}
	}
	return Require{}, false
}

// Replacement returns the replace directive that applies to path at version.
// A replace naming the exact version takes precedence over one without a
// version, matching how the go command resolves them.
func (f *File) Replacement(path, version string) (Replace, bool) {
	var wildcard *Replace
	for i := range f.Replace {
		r := &f.Replace[i]
		if r.Old.Path != path {
			continue
		}
		if r.Old.Version == version && version != "" {
			return *r, true
		}
		if r.Old.Version == "" && wildcard == nil {
			wildcard = r
		}
	}
	if wildcard != nil {
		return *wildcard, true
	}
	return Replace{}, false
}

// IsExcluded reports whether path@version appears in an exclude directive.
func (f *File) IsExcluded(path, version string) bool {
	for _, e := range f.Exclude {
		if e.Path == path && e.Version == version {
			return true
		}
	}
	return false
}

type block int

const (
	blockNone block = iota
	blockRequire
	blockReplace
	blockExclude
	blockRetract
)

var blockKeywords = map[string]block{
	"require": blockRequire,
	"replace": blockReplace,
	"exclude": blockExclude,
	"retract": blockRetract,
}

// Parse parses go.mod content. It never fails: lines it cannot make sense
// of are skipped so hand-edited files with unknown directives still load.
func Parse(data []byte) *File {
	f := &File{}
	open := blockNone

	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))

		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if b, ok := blockOpener(line); ok {
			open = b
			continue
		}
		if line == ")" {
			open = blockNone
			continue
		}

		if open != blockNone {
			f.add(open, line)
			continue
		}

		keyword, rest := cutKeyword(line)
		switch keyword {
		case "module":
			path, _ := splitComment(rest)
			f.Module = unquote(path)
		case "go":
			f.Go, _ = splitComment(rest)
		case "toolchain":
			f.Toolchain, _ = splitComment(rest)
		default:
			if b, ok := blockKeywords[keyword]; ok && rest != "" {
				f.add(b, rest)
			}
		}
	}
	return f
}

// cutKeyword splits the leading directive keyword from the rest of the line.
func cutKeyword(line string) (keyword, rest string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// blockOpener recognises "require (" and friends.
func blockOpener(line string) (block, bool) {
	keyword, ok := strings.CutSuffix(line, "(")
	if !ok {
		return blockNone, false
	}
	b, ok := blockKeywords[strings.TrimSpace(keyword)]
	return b, ok
}

func (f *File) add(b block, line string) {
	switch b {
	case blockRequire:
		if r, ok := parseRequire(line); ok {
			f.Require = append(f.Require, r)
		}
	case blockReplace:
		if r, ok := parseReplace(line); ok {
			f.Replace = append(f.Replace, r)
		}
	case blockExclude:
		if e, ok := parseExclude(line); ok {
			f.Exclude = append(f.Exclude, e)
		}
	case blockRetract:
		if r, ok := parseRetract(line); ok {
			f.Retract = append(f.Retract, r)
		}
	}
}

// splitComment separates a trailing "// comment" from the directive text.
func splitComment(line string) (text, comment string) {
	text, comment, found := strings.Cut(line, "//")
	if !found {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(text), strings.TrimSpace(comment)
}

func parseRequire(line string) (Require, bool) {
	text, comment := splitComment(line)
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Require{}, false
	}
	return Require{
		Path:     unquote(fields[0]),
		Version:  fields[1],
		Indirect: isIndirect(comment),
	}, true
}

// isIndirect accepts "indirect" and the "indirect; note" form the go
// command preserves when a user appends to the marker.
func isIndirect(comment string) bool {
	return comment == "indirect" || strings.HasPrefix(comment, "indirect;")
}

func parseReplace(line string) (Replace, bool) {
	text, _ := splitComment(line)
	left, right, ok := strings.Cut(text, "=>")
	if !ok {
		return Replace{}, false
	}
	oldMod, ok := parseModVersion(left)
	if !ok {
		return Replace{}, false
	}
	newMod, ok := parseModVersion(right)
	if !ok {
		return Replace{}, false
	}
	return Replace{Old: oldMod, New: newMod}, true
}

func parseModVersion(s string) (ModVersion, bool) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return ModVersion{Path: unquote(fields[0])}, true
	case 2:
		return ModVersion{Path: unquote(fields[0]), Version: fields[1]}, true
	default:
		return ModVersion{}, false
	}
}

func parseExclude(line string) (Exclude, bool) {
	text, _ := splitComment(line)
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Exclude{}, false
	}
	return Exclude{Path: unquote(fields[0]), Version: fields[1]}, true
}

func parseRetract(line string) (Retract, bool) {
	text, comment := splitComment(line)
	if text == "" {
		return Retract{}, false
	}
	return Retract{Version: text, Rationale: comment}, true
}

// unquote strips the double quotes allowed around paths in older go.mod files.
func unquote(s string) string {
	return strings.Trim(s, `"`)
}
