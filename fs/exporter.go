// Package fs provides file-based export of harvested records.
package fs

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/fwojciec/harvest"
)

// Exporter writes records as markdown files with atomic update semantics.
// Records are saved to a temporary directory, then moved atomically on
// Commit, so a partially written export never replaces a previous one.
type Exporter struct {
	baseDir string
	name    string

	// used counts filename collisions within one export.
	used map[string]int
}

// NewExporter creates a new Exporter.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewExporter(baseDir, name string) *Exporter {
	return &Exporter{
		baseDir: baseDir,
		name:    name,
		used:    make(map[string]int),
	}
}

func (e *Exporter) tempDir() string {
	return filepath.Join(e.baseDir, e.name+".tmp")
}

func (e *Exporter) finalDir() string {
	return filepath.Join(e.baseDir, e.name)
}

// Save writes one record into the pending export directory.
func (e *Exporter) Save(r *harvest.Record) error {
	relPath := RecordPath(r)
	if n := e.used[relPath]; n > 0 {
		ext := filepath.Ext(relPath)
		relPath = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(relPath, ext), n+1, ext)
	}
	e.used[RecordPath(r)]++

	fullPath := filepath.Join(e.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(FormatRecord(r)), 0644)
}

// Commit atomically replaces the final directory with the pending export.
func (e *Exporter) Commit() error {
	if err := os.RemoveAll(e.finalDir()); err != nil {
		return err
	}
	return os.Rename(e.tempDir(), e.finalDir())
}

// Abort discards the pending export.
func (e *Exporter) Abort() error {
	return os.RemoveAll(e.tempDir())
}

// FormatRecord formats a record with YAML frontmatter.
func FormatRecord(r *harvest.Record) string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, f := range r.Fields {
		if f.Name == harvest.FieldDescription {
			continue
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	b.WriteString("harvested: ")
	b.WriteString(time.Now().Format("2006-01-02"))
	b.WriteString("\n---\n")
	if desc, ok := r.Get(harvest.FieldDescription); ok {
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	return b.String()
}

// RecordPath derives a relative markdown file path for a record: the URL
// path when one is present, else a slug of the name.
// Example: https://shop.test/products/oak-shelf → products/oak-shelf.md
func RecordPath(r *harvest.Record) string {
	if raw, ok := r.Get(harvest.FieldURL); ok {
		if u, err := url.Parse(raw); err == nil {
			path := strings.Trim(u.Path, "/")
			if path != "" {
				return path + ".md"
			}
		}
	}
	if name, ok := r.Get(harvest.FieldName); ok {
		if slug := slugify(name); slug != "" {
			return slug + ".md"
		}
	}
	return "record.md"
}

// slugify lowercases and replaces runs of non-alphanumerics with hyphens.
func slugify(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			hyphen = false
		case b.Len() > 0 && !hyphen:
			b.WriteRune('-')
			hyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
