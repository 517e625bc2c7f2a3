package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/logpub/internal/apperr"
	"github.com/starford/logpub/internal/testutil"
)

func TestFile_InsertsDateAndURL(t *testing.T) {
	dir, store := testutil.TestGraph(t, map[string]string{
		"2021-03-04-hello-world.md": "---\ntitle: Hello\n---\nbody\n",
	})

	res, err := File(store, "2021-03-04-hello-world.md")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if res.Skipped {
		t.Fatal("expected the post to be rewritten")
	}
	if res.URL != "/blog/2021/03/04/hello-world.html" {
		t.Errorf("url = %q", res.URL)
	}

	got, err := os.ReadFile(filepath.Join(dir, "2021-03-04-hello-world.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := "---\ndate: 2021-03-04\nurl: /blog/2021/03/04/hello-world.html\ntitle: Hello\n---\nbody\n"
	if string(got) != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestFile_SkipsExistingURL(t *testing.T) {
	const content = "---\nurl: /old.html\n---\nbody\n"
	dir, store := testutil.TestGraph(t, map[string]string{"2020-01-01-x.md": content})

	res, err := File(store, "2020-01-01-x.md")
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if !res.Skipped {
		t.Error("expected skip")
	}
	got, _ := os.ReadFile(filepath.Join(dir, "2020-01-01-x.md"))
	if string(got) != content {
		t.Errorf("content changed: %q", got)
	}
}

func TestFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"bad name", "hello.md", "---\na: b\n---\n", apperr.ErrBadPostName},
		{"empty", "2020-01-01-e.md", "", apperr.ErrNoFrontMatter},
		{"no opening delimiter", "2020-01-01-n.md", "title: x\n---\n", apperr.ErrNoFrontMatter},
		{"no closing delimiter", "2020-01-01-c.md", "---\ntitle: x\n", apperr.ErrNoFrontMatter},
		{"empty block", "2020-01-01-b.md", "---\n---\nbody\n", apperr.ErrNoFrontMatter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, store := testutil.TestGraph(t, map[string]string{tt.file: tt.content})
			_, err := File(store, tt.file)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	dir, _ := testutil.TestGraph(t, map[string]string{
		"posts/2022-05-06-a.md": "---\ntitle: A\n---\n",
		"posts/2022-05-07-b.md": "---\ntitle: B\nurl: /b.html\n---\n",
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	paths := []string{
		filepath.Join(dir, "posts", "2022-05-06-a.md"),
		filepath.Join(dir, "posts", "2022-05-07-b.md"),
	}

	results, err := Paths(context.Background(), paths, logger)
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Skipped || !results[1].Skipped {
		t.Errorf("skipped = %v/%v, want false/true", results[0].Skipped, results[1].Skipped)
	}
	if results[0].Path != paths[0] {
		t.Errorf("path = %q, want %q", results[0].Path, paths[0])
	}
}
