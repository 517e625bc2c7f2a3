// Package migrate rewrites dated blog posts so a site generator keeps the
// date and the legacy URL that used to be derived from the file name.
package migrate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/starford/logpub/internal/apperr"
	"github.com/starford/logpub/internal/storage"
)

var postNameRe = regexp.MustCompile(`^([0-9]{4}-[0-9]{2}-[0-9]{2})-(.+)\.md$`)

const delimiter = "---"

// Result describes one migrated post.
type Result struct {
	Path    string
	Date    string
	URL     string
	Skipped bool
}

// File migrates the post at name, relative to store's root. The file name
// must look like YYYY-MM-DD-slug.md and the file must start with a front
// matter block. `date` and `url` lines are inserted right after the opening
// delimiter. A post whose front matter already has a url is left untouched.
func File(store storage.Provider, name string) (*Result, error) {
	m := postNameRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return nil, fmt.Errorf("migrate: %s: %w", name, apperr.ErrBadPostName)
	}
	date, slug := m[1], m[2]
	res := &Result{
		Path: name,
		Date: date,
		URL:  "/blog/" + strings.ReplaceAll(date, "-", "/") + "/" + slug + ".html",
	}

	data, err := store.Read(name)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("migrate: %s: file is empty: %w", name, apperr.ErrNoFrontMatter)
	}
	if lines[0] != delimiter {
		return nil, fmt.Errorf("migrate: %s: %w", name, apperr.ErrNoFrontMatter)
	}
	if end := indexOf(lines[1:], delimiter); end < 1 {
		return nil, fmt.Errorf("migrate: %s: missing or empty front matter block: %w", name, apperr.ErrNoFrontMatter)
	}

	var meta map[string]any
	if _, err := frontmatter.MustParse(bytes.NewReader(data), &meta); err != nil {
		return nil, fmt.Errorf("migrate: %s: %w: %v", name, apperr.ErrNoFrontMatter, err)
	}
	if _, ok := meta["url"]; ok {
		res.Skipped = true
		return res, nil
	}

	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[0], "date: "+date, "url: "+res.URL)
	out = append(out, lines[1:]...)
	if err := store.Write(name, []byte(strings.Join(out, "\n")+"\n")); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return res, nil
}

// Paths migrates each file path in turn and stops at the first failure.
func Paths(ctx context.Context, paths []string, logger *slog.Logger) ([]*Result, error) {
	var results []*Result
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		store, err := storage.NewFS(filepath.Dir(p))
		if err != nil {
			return results, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrate: processing", slog.String("path", p))
		res, err := File(store, filepath.Base(p))
		if err != nil {
			return results, err
		}
		res.Path = p
		if res.Skipped {
			logger.Info("migrate: url already set, skipped", slog.String("path", p))
		}
		results = append(results, res)
	}
	return results, nil
}

func indexOf(lines []string, s string) int {
	for i, l := range lines {
		if l == s {
			return i
		}
	}
	return -1
}
