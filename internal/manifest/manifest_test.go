package manifest

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/logpub/internal/apperr"
	"github.com/starford/logpub/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "logpub-manifest-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReplaceAndPaths(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now()

	if err := db.Replace(ctx, []models.ExportRecord{
		{Path: "b.md", Title: "b", URL: "/notes/b/", Checksum: "1", ExportedAt: now},
		{Path: "a.md", Title: "a", URL: "/notes/a/", Checksum: "2", ExportedAt: now},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	paths, err := db.Paths(ctx)
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if len(paths) != 2 || paths[0] != "a.md" || paths[1] != "b.md" {
		t.Errorf("paths = %v, want [a.md b.md]", paths)
	}

	if err := db.Replace(ctx, []models.ExportRecord{{Path: "c.md", Title: "c", ExportedAt: now}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	paths, _ = db.Paths(ctx)
	if len(paths) != 1 || paths[0] != "c.md" {
		t.Errorf("paths = %v, want [c.md]", paths)
	}
}

func TestRuns(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if _, err := db.LastRun(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_ = db.RecordRun(ctx, Run{FinishedAt: time.Now(), Written: 1})
	_ = db.RecordRun(ctx, Run{FinishedAt: time.Now(), Written: 3, Pruned: 2})
	r, err := db.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if r.Written != 3 || r.Pruned != 2 {
		t.Errorf("run = %+v, want written 3 pruned 2", r)
	}
}
