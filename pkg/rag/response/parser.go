package response

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Citation is one source reference emitted by the model.
type Citation struct {
	Filename string `json:"filename"`
	Type     string `json:"type,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// Parsed is the schema'd answer shape after best-effort extraction.
type Parsed struct {
	Answer      string     `json:"answer"`
	Confidence  float64    `json:"confidence,omitempty"`
	MissingInfo bool       `json:"missing_info,omitempty"`
	Followups   []string   `json:"followups,omitempty"`
	Citations   []Citation `json:"citations,omitempty"`
}

// sentinelPatterns are boundary/special tokens some models leak into text.
var sentinelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\|begin[_\s]*of[_\s]*sentence\|>`),
	regexp.MustCompile(`(?i)<\|end[_\s]*of[_\s]*sentence\|>`),
	regexp.MustCompile(`(?i)<\|begin[_\s]*of[_\s]*text\|>`),
	regexp.MustCompile(`(?i)<\|end[_\s]*of[_\s]*text\|>`),
	regexp.MustCompile(`(?i)<s>`),
	regexp.MustCompile(`(?i)</s>`),
	regexp.MustCompile(`<｜begin▁of▁sentence｜>`),
	regexp.MustCompile(`<｜end▁of▁sentence｜>`),
}

// CleanText strips known sentinel tokens and surrounding whitespace.
func CleanText(text string) string {
	out := text
	for _, p := range sentinelPatterns {
		out = p.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

// ParseStructured extracts the schema'd answer from raw model content using
// three tiers: a strict JSON parse, then the first {...} span embedded in
// surrounding text, then the raw text itself as the answer.
func ParseStructured(raw string) Parsed {
	s := strings.TrimSpace(raw)
	s = stripCodeFence(s)

	if p, ok := parseObject(s); ok {
		return p
	}

	if span, ok := firstObjectSpan(s); ok {
		if p, ok := parseObject(span); ok {
			return p
		}
	}

	return Parsed{Answer: CleanText(s)}
}

// parseObject attempts a strict parse. Objects missing "answer" but carrying
// a "message" or "content" field (provider policy/error blocks) still yield
// usable display text.
func parseObject(s string) (Parsed, bool) {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &generic); err != nil {
		return Parsed{}, false
	}

	var p Parsed
	if err := json.Unmarshal([]byte(s), &p); err == nil && p.Answer != "" {
		p.Answer = CleanText(p.Answer)
		return p, true
	}

	for _, key := range []string{"message", "content"} {
		if rawVal, ok := generic[key]; ok {
			var msg string
			if err := json.Unmarshal(rawVal, &msg); err == nil && msg != "" {
				return Parsed{Answer: CleanText(msg)}, true
			}
		}
	}

	return Parsed{}, false
}

// firstObjectSpan returns the outermost {...} span in s, if any.
func firstObjectSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	return strings.Trim(s, "`\n ")
}
