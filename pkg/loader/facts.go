package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"portfolio-chat-be/internal/constant"
)

// factsPerChunk groups small atomic statements into one retrievable chunk.
const factsPerChunk = 6

// loadYAMLFacts loads a YAML file. A QnA file (list of {q, a} maps) becomes
// one chunk per pair; anything else is flattened into key-value statements.
func loadYAMLFacts(path, filename, typeHint string) []Chunk {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var data interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil
	}

	if pairs, ok := asQnAPairs(data); ok {
		chunks := make([]Chunk, 0, len(pairs))
		for _, p := range pairs {
			chunks = append(chunks, Chunk{
				Text:     fmt.Sprintf("Q: %s\nA: %s", p.q, p.a),
				Filename: filename,
				Source:   path,
				Type:     constant.DocTypeQnA,
			})
		}
		return chunks
	}

	return factChunks(flattenFacts(data, ""), path, filename, typeHint)
}

// loadJSONFacts flattens a JSON document the same way as generic YAML.
func loadJSONFacts(path, filename string) []Chunk {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}

	return factChunks(flattenFacts(data, ""), path, filename, constant.DocTypeProfile)
}

type qnaPair struct {
	q, a string
}

// asQnAPairs detects the QnA shape: a list where every element is a map
// containing both "q" and "a".
func asQnAPairs(data interface{}) ([]qnaPair, bool) {
	list, ok := data.([]interface{})
	if !ok || len(list) == 0 {
		return nil, false
	}

	pairs := make([]qnaPair, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}
		q, hasQ := m["q"]
		a, hasA := m["a"]
		if !hasQ || !hasA {
			return nil, false
		}
		qs := strings.TrimSpace(fmt.Sprint(q))
		as := strings.TrimSpace(fmt.Sprint(a))
		if qs == "" || as == "" {
			continue
		}
		pairs = append(pairs, qnaPair{q: qs, a: as})
	}
	return pairs, true
}

// flattenFacts converts nested YAML/JSON into atomic statements, e.g.
// {education: [{level: PU}]} -> "education[0]: level: PU".
func flattenFacts(data interface{}, prefix string) []string {
	var facts []string

	switch v := data.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		// Go maps iterate in random order; chunk grouping must be stable
		// so a rebuilt index matches the previous one.
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			facts = append(facts, flattenFacts(v[k], key)...)
		}
	case []interface{}:
		for i, item := range v {
			facts = append(facts, flattenFacts(item, fmt.Sprintf("%s[%d]", prefix, i))...)
		}
	default:
		label := strings.ReplaceAll(prefix, ".", ": ")
		facts = append(facts, fmt.Sprintf("%s: %v", label, v))
	}

	return facts
}

func factChunks(facts []string, path, filename, docType string) []Chunk {
	var chunks []Chunk
	for i := 0; i < len(facts); i += factsPerChunk {
		end := i + factsPerChunk
		if end > len(facts) {
			end = len(facts)
		}
		text := strings.TrimSpace(strings.Join(facts[i:end], "\n"))
		if text == "" {
			continue
		}
		chunks = append(chunks, Chunk{
			Text:     text,
			Filename: filename,
			Source:   path,
			Type:     docType,
		})
	}
	return chunks
}
