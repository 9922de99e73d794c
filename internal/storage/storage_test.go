package storage

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestFileStore_StoreAndOpen(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()

	key, err := store.Store(ctx, "resumes/student-1", "My Resume.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("Failed to store blob: %v", err)
	}
	if !strings.HasPrefix(key, "resumes/student-1/") {
		t.Errorf("Expected key under the caller prefix, got %s", key)
	}
	if strings.Contains(key, " ") {
		t.Errorf("Expected sanitized filename in key, got %s", key)
	}

	r, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Failed to open blob: %v", err)
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}
	if string(content) != "pdf-bytes" {
		t.Errorf("Expected stored content, got %q", content)
	}
}

func TestFileStore_StoreGeneratesFreshKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()

	// Replacement stores the new blob first, so both versions must coexist
	// until the old key is deleted.
	first, err := store.Store(ctx, "resumes/student-1", "resume.pdf", strings.NewReader("v1"))
	if err != nil {
		t.Fatalf("Failed to store first blob: %v", err)
	}
	second, err := store.Store(ctx, "resumes/student-1", "resume.pdf", strings.NewReader("v2"))
	if err != nil {
		t.Fatalf("Failed to store second blob: %v", err)
	}
	if first == second {
		t.Fatal("Expected distinct keys for the same filename")
	}

	if _, err := store.Open(ctx, first); err != nil {
		t.Errorf("Expected the old blob to survive until deleted: %v", err)
	}

	if err := store.Delete(ctx, first); err != nil {
		t.Fatalf("Failed to delete old blob: %v", err)
	}
	if _, err := store.Open(ctx, first); err == nil {
		t.Error("Expected the old blob to be gone after delete")
	}
	if _, err := store.Open(ctx, second); err != nil {
		t.Errorf("Expected the new blob to remain: %v", err)
	}
}

func TestFileStore_DeleteAbsentKey(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.Delete(context.Background(), "resumes/student-1/missing.pdf"); err != nil {
		t.Errorf("Deleting an absent key should not error, got %v", err)
	}
}

func TestFileStore_URLRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "/media/")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	key := "resumes/student-1/abc_resume.pdf"
	url := store.URL(key)
	if url != "/media/resumes/student-1/abc_resume.pdf" {
		t.Errorf("Unexpected URL %q", url)
	}
	if got := store.KeyFromURL(url); got != key {
		t.Errorf("Expected key %q back from URL, got %q", key, got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"resume.pdf", "resume.pdf"},
		{"My Resume (final).pdf", "My_Resume_final.pdf"},
		{"../../etc/passwd", "passwd"},
		{"###", "upload"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
