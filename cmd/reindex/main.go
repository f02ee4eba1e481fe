package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"

	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/pkg/embedding"
	"portfolio-chat-be/pkg/index"
	"portfolio-chat-be/pkg/loader"
)

// Offline index check: loads the data directory, embeds every chunk and
// prints what the server would serve after a reindex. Useful for validating
// new content files before deploying them.
func main() {
	dataDir := flag.String("data", "", "data directory (defaults to DATA_DIR from config)")
	dryRun := flag.Bool("dry-run", false, "load and chunk only, skip embedding")
	flag.Parse()

	cfg := config.Load()
	dir := *dataDir
	if dir == "" {
		dir = cfg.App.DataDir
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	bold.Printf("Loading content from %s\n", dir)
	chunks, err := loader.BuildFromDataDir(dir)
	if err != nil {
		red.Printf("✗ load failed: %v\n", err)
		os.Exit(1)
	}
	if len(chunks) == 0 {
		yellow.Println("! no chunks produced, check the data directory")
		os.Exit(1)
	}
	green.Printf("✓ %d chunks\n", len(chunks))

	if *dryRun {
		printChunkStats(chunks)
		return
	}

	var provider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		provider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	} else {
		provider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	}

	bold.Println("Embedding...")
	started := time.Now()
	ix := index.New(provider)
	summary, err := ix.Build(chunks)
	if err != nil {
		red.Printf("✗ embedding failed: %v\n", err)
		os.Exit(1)
	}
	green.Printf("✓ indexed %d/%d chunks in %s\n", summary.TotalChunks, len(chunks), time.Since(started).Round(time.Millisecond))
	if summary.TotalChunks < len(chunks) {
		yellow.Printf("! %d chunks failed to embed\n", len(chunks)-summary.TotalChunks)
	}

	printSummary(summary)

	if query := flag.Arg(0); query != "" {
		bold.Printf("\nTop matches for %q:\n", query)
		results, err := ix.Search(query, 3)
		if err != nil {
			log.Fatalf("search failed: %v", err)
		}
		for _, r := range results {
			fmt.Printf("  %.4f  %s (%s)\n", r.Score, r.Chunk.Filename, r.Chunk.Type)
		}
	}
}

func printChunkStats(chunks []loader.Chunk) {
	byFile := map[string]int{}
	for _, c := range chunks {
		byFile[c.Filename]++
	}
	printCounts(byFile)
}

func printSummary(summary *index.Summary) {
	fmt.Println("\nBy type:")
	printCounts(summary.ByType)
	fmt.Println("\nBy file:")
	printCounts(summary.ByFile)
}

func printCounts(counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-40s %d\n", k, counts[k])
	}
}
