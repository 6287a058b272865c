package fs

import (
	"os"
	"path/filepath"
	"testing"

	"videorag/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkerFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	writeFile(t, filepath.Join(root, "a", "lecture.txt"), "a")
	writeFile(t, filepath.Join(root, "a", "notes.md"), "ignored")
	writeFile(t, filepath.Join(root, ".videorag", "cache.txt"), "excluded")

	w := NewWalker([]string{"**/*.txt"}, []string{"**/.videorag/**", ".videorag/**"})
	files, err := w.Walk(root)
	if err != nil {
		t.Fatal(err)
	}

	var rel []string
	for _, f := range files {
		r, _ := filepath.Rel(root, f.Path)
		rel = append(rel, filepath.ToSlash(r))
	}

	want := []string{"a/lecture.txt", "b.txt"}
	if len(rel) != len(want) {
		t.Fatalf("got %v, want %v", rel, want)
	}
	for i := range want {
		if rel[i] != want[i] {
			t.Errorf("file %d: got %s, want %s", i, rel[i], want[i])
		}
	}
}

func TestWalkerMatches(t *testing.T) {
	w := NewWalker(nil, []string{"tmp/**"})
	if !w.Matches("talks/intro.txt") {
		t.Error("expected default include to match .txt")
	}
	if w.Matches("talks/intro.mp4") {
		t.Error("expected .mp4 to be ignored")
	}
	if w.Matches("tmp/x.txt") {
		t.Error("expected excluded path to be ignored")
	}
}

func TestTranscriptReader(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.txt")
	empty := filepath.Join(dir, "empty.txt")
	silent := filepath.Join(dir, "silent.txt")
	binary := filepath.Join(dir, "binary.txt")
	broken := filepath.Join(dir, "broken.txt")

	writeFile(t, ok, "  The cat sat on the mat.\n")
	writeFile(t, empty, " \n\t")
	writeFile(t, silent, "No speech detected.\n")
	writeFile(t, binary, string([]byte{0xff, 0xfe, 0x00}))
	writeFile(t, broken, "Transcription failed due to an error.\n")

	r := NewTranscriptReader("No speech detected.", "Transcription failed due to an error.")

	tests := []struct {
		name   string
		path   string
		status domain.TranscriptStatus
		text   string
	}{
		{"ok", ok, domain.StatusOK, "The cat sat on the mat."},
		{"empty", empty, domain.StatusSkipped, ""},
		{"no speech", silent, domain.StatusSkipped, ""},
		{"invalid utf8", binary, domain.StatusFailed, ""},
		{"transcription failed", broken, domain.StatusFailed, ""},
		{"missing", filepath.Join(dir, "missing.txt"), domain.StatusFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, res := r.Read(tt.path)
			if res.Status != tt.status {
				t.Errorf("status = %s, want %s (reason %q)", res.Status, tt.status, res.Reason)
			}
			if tr.Text != tt.text {
				t.Errorf("text = %q, want %q", tr.Text, tt.text)
			}
			if res.Source != tt.path {
				t.Errorf("source = %q, want %q", res.Source, tt.path)
			}
			if tt.status == domain.StatusFailed && res.Err == nil {
				t.Error("failed result should carry an error")
			}
		})
	}
}

func TestTranscriptReaderMarkerDisabled(t *testing.T) {
	dir := t.TempDir()
	silent := filepath.Join(dir, "silent.txt")
	writeFile(t, silent, "No speech detected.")

	writeFile(t, filepath.Join(dir, "broken.txt"), "Transcription failed due to an error.")

	r := NewTranscriptReader("", "")
	for _, name := range []string{"silent.txt", "broken.txt"} {
		_, res := r.Read(filepath.Join(dir, name))
		if res.Status != domain.StatusOK {
			t.Errorf("%s: expected marker check disabled, got %s", name, res.Status)
		}
	}
}
