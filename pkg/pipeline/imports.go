package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"unicode"
)

// Loader fetches the content of an imported or included decksh file
type Loader func(ctx context.Context, path string) ([]byte, error)

// ImportResolver pre-expands decksh import, include and function calls so
// that decks can be processed without filesystem access (in-process,
// browser, wazero and Cloudflare pipelines).
//
// import "f.dsh" registers the def/edef function of f.dsh. Every later call
// of that function is replaced by its body with the caller's arguments
// substituted. call "f.dsh" args... does the same without a prior import.
// include "f.dsh" inlines the whole file, recursively expanded.
type ImportResolver struct {
	load     Loader
	funcs    map[string]*function
	visiting map[string]bool
	calling  map[string]bool
}

// function is a parsed def/edef block
type function struct {
	name   string
	params []string
	body   []string
}

// NewImportResolver creates a resolver reading files through load
func NewImportResolver(load Loader) *ImportResolver {
	return &ImportResolver{
		load:     load,
		funcs:    make(map[string]*function),
		visiting: make(map[string]bool),
		calling:  make(map[string]bool),
	}
}

var (
	importRe  = regexp.MustCompile(`^\s*import\s+"([^"]+)"\s*$`)
	includeRe = regexp.MustCompile(`^\s*include\s+"([^"]+)"\s*$`)
	callRe    = regexp.MustCompile(`^\s*(?:call|func|callfunc)\s+"([^"]+)"(.*)$`)
	defRe     = regexp.MustCompile(`^\s*def\s+(\w+)(.*)$`)
	edefRe    = regexp.MustCompile(`^\s*edef\s*$`)
)

var (
	// ErrIncludeCycle is returned when a file includes itself, directly or not.
	ErrIncludeCycle = errors.New("include cycle")
	// ErrRecursiveCall is returned when an imported function calls itself.
	ErrRecursiveCall = errors.New("recursive function call")
)

// Expand returns source with every import, include and imported function
// call replaced. sourcePath is the storage key of source; relative paths
// resolve against its directory.
func (r *ImportResolver) Expand(ctx context.Context, source []byte, sourcePath string) ([]byte, error) {
	if r.visiting[sourcePath] {
		return nil, fmt.Errorf("%w at %s", ErrIncludeCycle, sourcePath)
	}
	r.visiting[sourcePath] = true
	defer delete(r.visiting, sourcePath)

	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(source))
	for scanner.Scan() {
		if err := r.expandLine(ctx, &out, scanner.Text(), sourcePath); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	return out.Bytes(), nil
}

func (r *ImportResolver) expandLine(ctx context.Context, out *bytes.Buffer, line, sourcePath string) error {
	if m := importRe.FindStringSubmatch(line); m != nil {
		fn, err := r.importFile(ctx, m[1], sourcePath)
		if err != nil {
			return fmt.Errorf("import %q: %w", m[1], err)
		}
		r.funcs[fn.name] = fn
		return nil
	}

	if m := includeRe.FindStringSubmatch(line); m != nil {
		target := resolve(m[1], sourcePath)
		content, err := r.load(ctx, target)
		if err != nil {
			return fmt.Errorf("failed to load include %q: %w", m[1], err)
		}
		expanded, err := r.Expand(ctx, content, target)
		if err != nil {
			return fmt.Errorf("include %q: %w", m[1], err)
		}
		fmt.Fprintf(out, "// begin include %s\n", m[1])
		out.Write(expanded)
		fmt.Fprintf(out, "// end include %s\n", m[1])
		return nil
	}

	if m := callRe.FindStringSubmatch(line); m != nil {
		fn, err := r.importFile(ctx, m[1], sourcePath)
		if err != nil {
			return fmt.Errorf("call %q: %w", m[1], err)
		}
		return r.call(ctx, out, fn, splitArgs(m[2]), sourcePath)
	}

	if args := splitArgs(line); len(args) > 0 {
		if fn, ok := r.funcs[args[0]]; ok {
			return r.call(ctx, out, fn, args[1:], sourcePath)
		}
	}

	out.WriteString(line)
	out.WriteByte('\n')
	return nil
}

func (r *ImportResolver) importFile(ctx context.Context, ref, sourcePath string) (*function, error) {
	content, err := r.load(ctx, resolve(ref, sourcePath))
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", ref, err)
	}
	return parseDef(content)
}

// call writes the body of fn with params replaced by args. Calls inside
// the body expand in turn.
func (r *ImportResolver) call(ctx context.Context, out *bytes.Buffer, fn *function, args []string, sourcePath string) error {
	if len(args) != len(fn.params) {
		return fmt.Errorf("%s: want %d arguments %v, got %d", fn.name, len(fn.params), fn.params, len(args))
	}
	if r.calling[fn.name] {
		return fmt.Errorf("%w: %s", ErrRecursiveCall, fn.name)
	}
	r.calling[fn.name] = true
	defer delete(r.calling, fn.name)

	bind := make(map[string]string, len(args))
	for i, p := range fn.params {
		bind[p] = args[i]
	}
	for _, line := range fn.body {
		if err := r.expandLine(ctx, out, substitute(line, bind), sourcePath); err != nil {
			return fmt.Errorf("in %s: %w", fn.name, err)
		}
	}
	return nil
}

// resolve joins a relative reference with the directory of the referring file.
// Storage keys always use forward slashes.
func resolve(ref, from string) string {
	if strings.HasPrefix(ref, "/") {
		return strings.TrimPrefix(ref, "/")
	}
	return path.Join(path.Dir(from), ref)
}

// parseDef returns the first def/edef block of source
func parseDef(source []byte) (*function, error) {
	var fn *function
	scanner := bufio.NewScanner(bytes.NewReader(source))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case defRe.MatchString(line):
			if fn != nil {
				return nil, errors.New("nested def blocks not supported")
			}
			m := defRe.FindStringSubmatch(line)
			fn = &function{name: m[1], params: strings.Fields(m[2])}
		case edefRe.MatchString(line):
			if fn == nil {
				return nil, errors.New("edef without matching def")
			}
			return fn, nil
		case fn != nil:
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			fn.body = append(fn.body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	if fn != nil {
		return nil, fmt.Errorf("unclosed def block for function %q", fn.name)
	}
	return nil, errors.New("no function definition found")
}

// splitArgs splits a call line on whitespace, keeping quoted strings whole
func splitArgs(s string) []string {
	var args []string
	var cur strings.Builder
	inQuote, escaped := false, false
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, c := range s {
		switch {
		case escaped:
			escaped = false
		case inQuote && c == '\\':
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case !inQuote && unicode.IsSpace(c):
			flush()
			continue
		}
		cur.WriteRune(c)
	}
	flush()
	return args
}

// substitute replaces identifiers of line found in bind. Quoted strings
// are left alone, as decksh does.
func substitute(line string, bind map[string]string) string {
	var out strings.Builder
	runes := []rune(line)
	for i := 0; i < len(runes); {
		c := runes[i]
		switch {
		case c == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				if runes[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(runes) {
				j++
			}
			if j > len(runes) {
				j = len(runes)
			}
			out.WriteString(string(runes[i:j]))
			i = j
		case isWordRune(c):
			j := i
			for j < len(runes) && (isWordRune(runes[j]) || runes[j] == '.') {
				j++
			}
			word := string(runes[i:j])
			if v, ok := bind[word]; ok && !unicode.IsDigit(c) {
				word = v
			}
			out.WriteString(word)
			i = j
		default:
			out.WriteRune(c)
			i++
		}
	}
	return out.String()
}

func isWordRune(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

// HasImports reports whether source contains import, include or call statements
func HasImports(source []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(source))
	for scanner.Scan() {
		line := scanner.Text()
		if importRe.MatchString(line) || includeRe.MatchString(line) || callRe.MatchString(line) {
			return true
		}
	}
	return false
}

// StorageLoader adapts anything with a storage-style Get to a Loader
func StorageLoader(storage interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}) Loader {
	return func(ctx context.Context, key string) ([]byte, error) {
		reader, err := storage.Get(ctx, strings.TrimPrefix(key, "/"))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	}
}
