// Package module resolves SOF module names to parsed token trees and caches
// them (spec.md §4.10). It is grounded almost directly on the teacher's
// pkg/vm/import.go: read file, lex, parse, cache — with the compile step
// dropped (SOF has no bytecode) and export-merging left to the engine,
// which owns the nametable the exports land in.
package module

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/klfr/sof/pkg/langerr"
	"github.com/klfr/sof/pkg/parser"
	"github.com/klfr/sof/pkg/token"
)

// Loaded is one resolved module: its file path and its parsed token tree.
type Loaded struct {
	Path string
	Body []token.Token
}

// Loader resolves module names against a standard-library root and caches
// every path it has parsed.
type Loader struct {
	libRoot string
	cache   map[string]*Loaded
	group   singleflight.Group
}

// NewLoader constructs a Loader rooted at libRoot (spec.md §6.3).
func NewLoader(libRoot string) *Loader {
	return &Loader{libRoot: libRoot, cache: make(map[string]*Loaded)}
}

// ResolvePath maps a module name to a file path: a name starting with '.'
// resolves relative to callingModulePath's directory; otherwise relative to
// the standard-library root. Dots in the name become path separators and
// ".sof" is appended (spec.md §6.3).
func (l *Loader) ResolvePath(name, callingModulePath string) string {
	if strings.HasPrefix(name, ".") {
		rel := filepath.FromSlash(strings.ReplaceAll(strings.TrimPrefix(name, "."), ".", string(filepath.Separator)))
		return filepath.Join(filepath.Dir(callingModulePath), rel+".sof")
	}
	rel := filepath.FromSlash(strings.ReplaceAll(name, ".", string(filepath.Separator)))
	return filepath.Join(l.libRoot, rel+".sof")
}

// Preload seeds the cache at path with an already-parsed body, so a later
// Load of a name that resolves to path is a cache hit. Used once, at engine
// construction, to bootstrap the standard-library preamble (spec.md §4.10)
// without requiring it to exist as a file on disk.
func (l *Loader) Preload(path string, body []token.Token) {
	l.cache[path] = &Loaded{Path: path, Body: body}
}

// Load resolves name relative to callingModulePath, returning the cached
// parse if this path has been loaded before, or reading, lexing and parsing
// it otherwise. Concurrent loads of the same path are collapsed by
// singleflight so the file is only read and parsed once.
func (l *Loader) Load(span token.Span, name, callingModulePath string) (*Loaded, error) {
	path := l.ResolvePath(name, callingModulePath)
	if cached, ok := l.cache[path]; ok {
		return cached, nil
	}

	result, err, _ := l.group.Do(path, func() (any, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, langerr.ModuleFileNotReadable(span, path, err)
		}
		body, err := parser.Parse(string(content))
		if err != nil {
			return nil, err
		}
		loaded := &Loaded{Path: path, Body: body}
		l.cache[path] = loaded
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Loaded), nil
}
