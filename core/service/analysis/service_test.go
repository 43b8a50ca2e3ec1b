package analysis

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/NATEHSIAO/pdf-invoice/core/domain"
)

func TestMemoryProgressStore(t *testing.T) {
	store := NewMemoryProgressStore()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	want := domain.AnalysisProgress{
		Total:   5,
		Current: 2,
		Status:  domain.AnalysisStatusProcessing,
		Message: "processed 2 of 5 messages",
	}
	if err := store.Set(ctx, "job-1", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := store.Get(ctx, "job-1")
	if err != nil || !ok {
		t.Fatalf("Get(job-1) = ok=%v err=%v, want present", ok, err)
	}
	if got != want {
		t.Errorf("Get(job-1) = %+v, want %+v", got, want)
	}

	// Jobs are isolated.
	if _, ok, _ := store.Get(ctx, "job-2"); ok {
		t.Error("Get(job-2) found progress belonging to another job")
	}

	if err := store.Delete(ctx, "job-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "job-1"); ok {
		t.Error("Get(job-1) still present after Delete")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"invoice.pdf", "invoice.pdf"},
		{"../../etc/passwd", "passwd"},
		{"/tmp/evil.pdf", "evil.pdf"},
		{`..\..\win\evil.pdf`, "evil.pdf"},
		{"dir/sub/name.pdf", "name.pdf"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidBatchID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"batch_20240315103000_a1b2c3d4", true},
		{"batch_x", true},
		{"notbatch_123", false},
		{"batch_../escape", false},
		{"batch_a.zip", false},
		{`batch_a\b`, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := validBatchID(tt.in); got != tt.want {
			t.Errorf("validBatchID(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildArchive(t *testing.T) {
	dir := t.TempDir()
	batchDir := filepath.Join(dir, "batch_test")
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"AB12345678.pdf": "first document",
		"CD87654321.pdf": "second document",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(batchDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	zipPath := filepath.Join(dir, "batch_test.zip")
	if err := buildArchive(batchDir, zipPath); err != nil {
		t.Fatalf("buildArchive() error = %v", err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer r.Close()

	if len(r.File) != len(files) {
		t.Fatalf("archive has %d entries, want %d", len(r.File), len(files))
	}
	for _, f := range r.File {
		want, ok := files[f.Name]
		if !ok {
			t.Errorf("unexpected archive entry %q", f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, len(want)+1)
		n, _ := rc.Read(buf)
		rc.Close()
		if string(buf[:n]) != want {
			t.Errorf("entry %q = %q, want %q", f.Name, buf[:n], want)
		}
	}
}

func TestBuildArchiveEmptyDir(t *testing.T) {
	dir := t.TempDir()
	batchDir := filepath.Join(dir, "batch_empty")
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := buildArchive(batchDir, filepath.Join(dir, "batch_empty.zip")); err == nil {
		t.Error("buildArchive() error = nil, want error for empty batch dir")
	}
}
