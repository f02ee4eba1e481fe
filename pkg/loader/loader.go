package loader

import (
	"os"
	"path/filepath"
	"strings"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/pkg/utils"
)

// Chunk is a bounded span of source text with its origin metadata. Chunks are
// created at index-build time and never mutated afterwards.
type Chunk struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
	Source   string `json:"source"`
	Type     string `json:"type"`
}

const (
	// Resume PDFs are long free text, split with overlap to preserve context
	// at boundaries. Structured facts are grouped instead (see facts.go).
	pdfChunkSize    = 1000
	pdfChunkOverlap = 200
)

// BuildFromDataDir walks the data directory and builds chunks from every
// recognized file. Unreadable or malformed files are skipped, not fatal:
// a single bad document must never prevent the rest of the index from
// building.
func BuildFromDataDir(dataDir string) ([]Chunk, error) {
	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	var chunks []Chunk

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		name := strings.ToLower(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))

		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			docType := constant.DocTypePDF
			if name == "resume" {
				docType = constant.DocTypeResume
			}
			text, err := extractPDFText(path)
			if err != nil || strings.TrimSpace(text) == "" {
				return nil
			}
			for _, part := range utils.SplitText(text, pdfChunkSize, pdfChunkOverlap) {
				if strings.TrimSpace(part) == "" {
					continue
				}
				chunks = append(chunks, Chunk{
					Text:     part,
					Filename: d.Name(),
					Source:   path,
					Type:     docType,
				})
			}
		case ".yaml", ".yml":
			chunks = append(chunks, loadYAMLFacts(path, d.Name(), typeHintFromName(name))...)
		case ".json":
			chunks = append(chunks, loadJSONFacts(path, d.Name())...)
		case ".md":
			if c, ok := loadMarkdown(path, d.Name()); ok {
				chunks = append(chunks, c)
			}
		case ".txt":
			if c, ok := loadText(path, d.Name()); ok {
				chunks = append(chunks, c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return chunks, nil
}

// typeHintFromName infers a document type tag from the file stem.
func typeHintFromName(name string) string {
	switch {
	case strings.Contains(name, "qna"):
		return constant.DocTypeQnA
	case strings.Contains(name, "timeline"):
		return constant.DocTypeTimeline
	case strings.Contains(name, "links"):
		return constant.DocTypeLinks
	default:
		return constant.DocTypeProfile
	}
}

func loadText(path, filename string) (Chunk, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Chunk{}, false
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return Chunk{}, false
	}
	return Chunk{
		Text:     text,
		Filename: filename,
		Source:   path,
		Type:     constant.DocTypeNotes,
	}, true
}
