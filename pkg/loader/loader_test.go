package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"portfolio-chat-be/internal/constant"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuildFromDataDirMissingDir(t *testing.T) {
	chunks, err := BuildFromDataDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("err = %v, missing dir must not fail", err)
	}
	if len(chunks) != 0 {
		t.Errorf("chunks = %d, want 0", len(chunks))
	}
}

func TestBuildFromDataDirSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", ":\n\t- not yaml [")
	writeFile(t, dir, "notes.md", "Some real content.")
	writeFile(t, dir, "ignored.exe", "binary")

	chunks, err := BuildFromDataDir(dir)
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want only the markdown note", len(chunks))
	}
	if chunks[0].Type != constant.DocTypeNotes {
		t.Errorf("type = %q", chunks[0].Type)
	}
}

func TestLoadYAMLQnA(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "qna.yaml", `
- q: Where do you work?
  a: At Fynd.
- q: What do you enjoy?
  a: Sports and traveling.
`)

	chunks := loadYAMLFacts(path, "qna.yaml", constant.DocTypeProfile)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want one per pair", len(chunks))
	}
	if chunks[0].Type != constant.DocTypeQnA {
		t.Errorf("type = %q, want qna", chunks[0].Type)
	}
	if chunks[0].Text != "Q: Where do you work?\nA: At Fynd." {
		t.Errorf("text = %q", chunks[0].Text)
	}
}

func TestLoadYAMLFactsFlattening(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "profile.yaml", `
name: Tejas
education:
  - level: PU
  - level: BE
`)

	chunks := loadYAMLFacts(path, "profile.yaml", constant.DocTypeProfile)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}

	text := chunks[0].Text
	for _, want := range []string{"education[0]: level: PU", "education[1]: level: BE", "name: Tejas"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}

	// Sorted keys make rebuilds deterministic.
	if strings.Index(text, "education") > strings.Index(text, "name") {
		t.Errorf("keys not sorted:\n%s", text)
	}
}

func TestFactChunksGrouping(t *testing.T) {
	facts := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		facts = append(facts, "fact")
	}

	chunks := factChunks(facts, "p", "f.yaml", constant.DocTypeProfile)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3 (6+6+2)", len(chunks))
	}
	if got := strings.Count(chunks[0].Text, "fact"); got != 6 {
		t.Errorf("first chunk facts = %d, want 6", got)
	}
	if got := strings.Count(chunks[2].Text, "fact"); got != 2 {
		t.Errorf("last chunk facts = %d, want 2", got)
	}
}

func TestLoadMarkdownFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "timeline.md", `---
type: timeline
title: Career
---
Joined Fynd in 2023.`)

	c, ok := loadMarkdown(path, "timeline.md")
	if !ok {
		t.Fatal("loadMarkdown returned not ok")
	}
	if c.Type != "timeline" {
		t.Errorf("type = %q, frontmatter must override", c.Type)
	}
	if c.Text != "Joined Fynd in 2023." {
		t.Errorf("text = %q, frontmatter must be stripped", c.Text)
	}
}

func TestLoadMarkdownWithoutFrontmatter(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plain.md", "No frontmatter here.")

	c, ok := loadMarkdown(path, "plain.md")
	if !ok {
		t.Fatal("loadMarkdown returned not ok")
	}
	if c.Type != constant.DocTypeNotes {
		t.Errorf("type = %q, want notes", c.Type)
	}
	if c.Text != "No frontmatter here." {
		t.Errorf("text = %q", c.Text)
	}
}

func TestLoadMarkdownEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.md", "   \n  ")

	if _, ok := loadMarkdown(path, "empty.md"); ok {
		t.Error("empty file must produce no chunk")
	}
}
