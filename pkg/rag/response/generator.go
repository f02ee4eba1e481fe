// Package response turns a question, retrieved context, and conversation
// history into the final assistant answer, walking an ordered list of model
// candidates and never surfacing an error to the caller.
package response

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/pkg/llm"
	"portfolio-chat-be/pkg/rag/prompt"
)

// defaultModel is the last-resort candidate appended after every configured
// fallback.
const defaultModel = "deepseek/deepseek-chat:free"

// FlagStore is the slice of the session store the generator needs: reading
// per-session booleans and marking them true. Flags never revert.
type FlagStore interface {
	Flags(ctx context.Context, sessionID string) (map[string]bool, error)
	MarkFlag(ctx context.Context, sessionID, name string) error
}

// Result is the generation outcome. Answer is always non-empty: total
// failure degrades to the fixed apology text.
type Result struct {
	Answer      string
	Model       string
	MissingInfo bool
	Citations   []Citation
}

type Generator struct {
	completer    llm.Completer
	primaryModel string
	fallbacks    []string
	flags        FlagStore
	logger       logger.ILogger
}

func NewGenerator(completer llm.Completer, primaryModel string, fallbacks []string, flags FlagStore, log logger.ILogger) *Generator {
	return &Generator{
		completer:    completer,
		primaryModel: primaryModel,
		fallbacks:    fallbacks,
		flags:        flags,
		logger:       log,
	}
}

// Candidates returns the ordered, de-duplicated model list: configured
// primary, environment fallbacks, then the hardcoded default.
func (g *Generator) Candidates() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range append(append([]string{g.primaryModel}, g.fallbacks...), defaultModel) {
		if m != "" && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// Generate answers the question from retrieved context and history. Each
// candidate model gets exactly one attempt; transient provider failures move
// to the next candidate. The method never returns an error: when every
// candidate is exhausted the fixed apology text is the answer.
func (g *Generator) Generate(ctx context.Context, sessionID, question, contextText string, history []llm.Message) *Result {
	schemaJSON, err := json.Marshal(prompt.AnswerSchema())
	if err != nil {
		// The schema is a static literal; this cannot happen at runtime.
		g.logger.Error("generator", "failed to marshal answer schema", map[string]interface{}{"error": err.Error()})
		return &Result{Answer: constant.ApologyMessage}
	}

	// Flag reads are best-effort: a failed store lookup only means the
	// personal-touch aside may repeat once.
	flags, err := g.flags.Flags(ctx, sessionID)
	if err != nil {
		g.logger.Warn("generator", "failed to read session flags", map[string]interface{}{"error": err.Error()})
	}
	includePersonalTouch := !flags[constant.FlagHobbiesMentioned]
	messages := prompt.BuildMessages(question, contextText, string(schemaJSON), history, includePersonalTouch)

	var attempts []string
	for _, model := range g.Candidates() {
		content, err := g.completer.Complete(ctx, llm.CompletionRequest{
			Model:            model,
			Temperature:      0.2,
			TopP:             0.95,
			MaxTokens:        380,
			FrequencyPenalty: 0.25,
			PresencePenalty:  0.1,
			Messages:         messages,
			ResponseFormat:   prompt.ResponseFormat(),
		})
		if err != nil {
			attempts = append(attempts, err.Error())
			if llm.IsTransient(err) {
				continue
			}
			// Context cancellation or a broken request: no candidate can do
			// better, stop early.
			break
		}

		parsed := ParseStructured(content)
		answer := g.postProcess(ctx, sessionID, parsed.Answer)
		if answer == "" {
			attempts = append(attempts, model+": empty answer after parsing")
			continue
		}

		return &Result{
			Answer:      answer,
			Model:       model,
			MissingInfo: parsed.MissingInfo,
			Citations:   parsed.Citations,
		}
	}

	g.logger.Warn("generator", "all model attempts failed", map[string]interface{}{"attempts": attempts})
	return &Result{Answer: constant.ApologyMessage}
}

var (
	fyndSpelling = regexp.MustCompile(`(?i)\bfynd\b`)

	currentWorkKeywords = []string{"fynd", "current work", "day job"}
	sideProjectKeywords = []string{"side project", "side-project", "personal project"}
	hobbyKeywords       = []string{"sports", "traveling", "travelling", "learning about tech"}
)

// postProcess applies the fixed answer invariants: canonical spelling,
// current-work-first ordering, and one-way session flag updates.
func (g *Generator) postProcess(ctx context.Context, sessionID, answer string) string {
	out := fyndSpelling.ReplaceAllString(answer, "Fynd")
	out = reorderWorkMentions(out)

	lower := strings.ToLower(out)
	if containsAny(lower, hobbyKeywords) {
		g.markFlag(ctx, sessionID, constant.FlagHobbiesMentioned)
	}
	if containsAny(lower, sideProjectKeywords) {
		g.markFlag(ctx, sessionID, constant.FlagSideProjectMentioned)
	}

	return strings.TrimSpace(out)
}

func (g *Generator) markFlag(ctx context.Context, sessionID, name string) {
	if err := g.flags.MarkFlag(ctx, sessionID, name); err != nil {
		g.logger.Warn("generator", "failed to mark session flag", map[string]interface{}{
			"flag":  name,
			"error": err.Error(),
		})
	}
}

// reorderWorkMentions enforces that current work is introduced before side
// projects: when a sentence about a side project precedes the first sentence
// about current work, the two sentences are swapped.
func reorderWorkMentions(text string) string {
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return text
	}

	sideIdx, workIdx := -1, -1
	for i, s := range sentences {
		lower := strings.ToLower(s)
		if sideIdx == -1 && containsAny(lower, sideProjectKeywords) {
			sideIdx = i
		}
		if workIdx == -1 && containsAny(lower, currentWorkKeywords) {
			workIdx = i
		}
	}

	if sideIdx == -1 || workIdx == -1 || workIdx < sideIdx {
		return text
	}

	sentences[sideIdx], sentences[workIdx] = sentences[workIdx], sentences[sideIdx]
	return strings.Join(sentences, " ")
}

// splitSentences is a naive period/question/exclamation splitter; answers
// are short plain text, so this is good enough for mention ordering.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
