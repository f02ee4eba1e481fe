package loader

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"portfolio-chat-be/internal/constant"
)

// loadMarkdown reads a Markdown note, stripping optional YAML frontmatter
// (a block delimited by "---" lines at the top of the file). A "type" key in
// the frontmatter overrides the default tag.
func loadMarkdown(path, filename string) (Chunk, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Chunk{}, false
	}

	frontmatter, content := splitFrontmatter(string(raw))

	docType := constant.DocTypeNotes
	if t, ok := frontmatter["type"].(string); ok && t != "" {
		docType = t
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return Chunk{}, false
	}

	return Chunk{
		Text:     content,
		Filename: filename,
		Source:   path,
		Type:     docType,
	}, true
}

// splitFrontmatter parses the leading YAML frontmatter of a Markdown file.
// Malformed frontmatter is ignored and the full text kept as content.
func splitFrontmatter(raw string) (map[string]interface{}, string) {
	if !strings.HasPrefix(raw, "---") {
		return nil, raw
	}

	rest := raw[strings.Index(raw, "\n")+1:]
	idx := strings.Index(rest, "\n---")
	if idx == -1 {
		return nil, raw
	}

	block := rest[:idx]
	content := rest[idx+len("\n---"):]
	if nl := strings.Index(content, "\n"); nl != -1 {
		content = content[nl+1:]
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil || fm == nil {
		return nil, raw
	}
	return fm, content
}
