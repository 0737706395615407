package docs

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Module is one documented Python module.
type Module struct {
	// Name is the dotted import path, e.g. "rusocsci.buttonbox".
	Name string
	// Doc is the module docstring, dedented, without quotes.
	Doc string
	// Defs are the top-level classes and functions, in source order.
	Defs []Def
}

// Def is a top-level class or function definition.
type Def struct {
	Kind      string // "class" or "def"
	Name      string
	Signature string // full header line without the trailing colon
	Doc       string
}

// ScanPackages walks the declared package directories under sourceTree and
// extracts module documentation from every .py file. Modules come back
// sorted by dotted name. An empty result is an error: a package with no
// importable modules cannot be documented.
func ScanPackages(sourceTree string, packages []string) ([]Module, error) {
	var modules []Module
	for _, pkg := range packages {
		root := filepath.Join(sourceTree, pkg)
		if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
			return nil, fmt.Errorf("package directory not found: %s", pkg)
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "__pycache__" {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), ".py") {
				return nil
			}
			rel, err := filepath.Rel(sourceTree, p)
			if err != nil {
				return err
			}
			mod, err := parseModule(p, dottedName(rel))
			if err != nil {
				return fmt.Errorf("parse %s: %w", rel, err)
			}
			modules = append(modules, mod)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(modules) == 0 {
		return nil, fmt.Errorf("no python modules found under %v", packages)
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules, nil
}

// dottedName converts "rusocsci/buttonbox.py" to "rusocsci.buttonbox".
// An __init__.py documents the package itself.
func dottedName(rel string) string {
	rel = filepath.ToSlash(strings.TrimSuffix(rel, ".py"))
	rel = strings.TrimSuffix(rel, "/__init__")
	return strings.ReplaceAll(rel, "/", ".")
}

// parseModule extracts the module docstring and top-level definitions with a
// line-oriented scan. This is introspection-light: it reads source text, it
// does not execute anything.
func parseModule(path, name string) (Module, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Module{}, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Module{}, err
	}

	mod := Module{Name: name}
	mod.Doc = moduleDocstring(lines)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if line != trimmed {
			continue // indented: not top-level
		}
		kind := ""
		switch {
		case strings.HasPrefix(trimmed, "def "):
			kind = "def"
		case strings.HasPrefix(trimmed, "class "):
			kind = "class"
		default:
			continue
		}

		sig, end := collectSignature(lines, i)
		defName := defName(trimmed, kind)
		doc := docstringAfter(lines, end+1)
		mod.Defs = append(mod.Defs, Def{Kind: kind, Name: defName, Signature: sig, Doc: doc})
		i = end
	}
	return mod, nil
}

// moduleDocstring returns the docstring if the first statement of the file
// is a triple-quoted string (after comments, encoding lines and blanks).
func moduleDocstring(lines []string) string {
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
			doc, _ := readTripleQuoted(lines, i)
			return doc
		}
		return ""
	}
	return ""
}

// docstringAfter returns the docstring starting at the first non-blank line
// at or after index start, provided that line opens a triple-quoted string.
func docstringAfter(lines []string, start int) string {
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "'''") {
			doc, _ := readTripleQuoted(lines, i)
			return doc
		}
		return ""
	}
	return ""
}

// readTripleQuoted reads a triple-quoted string starting on line i and
// returns its dedented content and the index of its closing line.
func readTripleQuoted(lines []string, i int) (string, int) {
	trimmed := strings.TrimSpace(lines[i])
	quote := `"""`
	if strings.HasPrefix(trimmed, "'''") {
		quote = "'''"
	}
	rest := strings.TrimPrefix(trimmed, quote)

	// Single-line docstring.
	if idx := strings.Index(rest, quote); idx >= 0 {
		return strings.TrimSpace(rest[:idx]), i
	}

	var parts []string
	if strings.TrimSpace(rest) != "" {
		parts = append(parts, strings.TrimSpace(rest))
	}
	for j := i + 1; j < len(lines); j++ {
		line := lines[j]
		if idx := strings.Index(line, quote); idx >= 0 {
			if content := strings.TrimSpace(line[:idx]); content != "" {
				parts = append(parts, content)
			}
			return strings.Join(parts, "\n"), j
		}
		parts = append(parts, strings.TrimRight(line, " \t"))
	}
	// Unterminated string: treat everything collected as the docstring.
	return strings.Join(parts, "\n"), len(lines) - 1
}

// collectSignature joins a possibly multi-line def/class header into one
// signature string, returning it and the index of the header's last line.
func collectSignature(lines []string, i int) (string, int) {
	var sb strings.Builder
	for j := i; j < len(lines); j++ {
		part := strings.TrimSpace(lines[j])
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(part)
		if strings.HasSuffix(part, ":") {
			return strings.TrimSuffix(sb.String(), ":"), j
		}
	}
	return sb.String(), len(lines) - 1
}

// defName extracts the bare name from a def/class header line.
func defName(trimmed, kind string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, kind))
	for i, r := range rest {
		if r == '(' || r == ':' || r == ' ' {
			return rest[:i]
		}
	}
	return rest
}
