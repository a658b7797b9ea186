package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"ragqa/config"
	"ragqa/internal/cli"
	"ragqa/internal/usecase"
)

func main() {
	rootDir := flag.String("dir", ".", "Directory holding the collection and config")
	query := flag.String("q", "", "Query to test")
	topK := flag.Int("k", 4, "Number of results")
	runs := flag.Int("n", 20, "Number of timed searches")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./docs -q \"query\"")
		fmt.Println("\nReports:")
		fmt.Println("  1. Collection state (backend, embedding model, chunk count)")
		fmt.Println("  2. Retrieval quality (similarity of the top matches)")
		fmt.Println("  3. Latency of cold and cached searches")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ix, err := cli.OpenIndex(cfg, *rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening collection: %v\n", err)
		os.Exit(1)
	}
	defer ix.Close()

	ctx := context.Background()
	info := ix.Describe(ctx)
	if info.Count == 0 {
		fmt.Fprintf(os.Stderr, "%s - run 'ragqa ingest' first\n", info.Status)
		os.Exit(1)
	}

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Backend:    %s (%s)\n", cfg.Index.Backend, cfg.Index.Collection)
	fmt.Printf("Embedding:  %s (%s)\n", cfg.Embedding.Model, cfg.Embedding.Provider)
	fmt.Printf("Chunks:     %d\n", info.Count)
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))

	start := time.Now()
	results, err := ix.Search(ctx, *query, *topK)
	cold := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	fmt.Printf("Top %d matches:\n\n", len(results))

	totalScore := 0.0
	for i, r := range results {
		preview := strings.ReplaceAll(usecase.Preview(r.Chunk.Content), "\n", " ")
		similarity := r.Score
		totalScore += similarity

		rating := "LOW"
		if similarity > 0.7 {
			rating = "HIGH"
		} else if similarity > 0.5 {
			rating = "GOOD"
		} else if similarity > 0.3 {
			rating = "OK"
		}

		fmt.Printf("%d. [%s %.3f] %s\n", i+1, rating, similarity, r.Chunk.Metadata.Filename)
		fmt.Printf("   %s\n\n", preview)
	}

	// Repeated searches are served by the query cache; uncached latency is
	// measured by invalidating before each run.
	cachedTimes := make([]time.Duration, 0, *runs)
	uncachedTimes := make([]time.Duration, 0, *runs)
	for i := 0; i < *runs; i++ {
		ix.Cache().Invalidate()
		start := time.Now()
		if _, err := ix.Search(ctx, *query, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Search error: %v\n", err)
			os.Exit(1)
		}
		uncachedTimes = append(uncachedTimes, time.Since(start))

		start = time.Now()
		ix.Search(ctx, *query, *topK)
		cachedTimes = append(cachedTimes, time.Since(start))
	}
	hits, misses := ix.Cache().Stats()

	avgScore := totalScore / float64(len(results))
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Average similarity: %.3f\n", avgScore)
	fmt.Printf("  Top-1 similarity:   %.3f\n", results[0].Score)

	if avgScore > 0.5 {
		fmt.Println("  Status: GOOD - retrieval working well")
	} else if avgScore > 0.3 {
		fmt.Println("  Status: OK - results are somewhat related")
	} else {
		fmt.Println("  Status: POOR - may need a better embedding model or re-ingesting")
	}

	fmt.Printf("\nLATENCY (%d runs):\n", *runs)
	fmt.Printf("  First search:      %s\n", cold)
	fmt.Printf("  Uncached p50/p95:  %s / %s\n", percentile(uncachedTimes, 50), percentile(uncachedTimes, 95))
	fmt.Printf("  Cached p50/p95:    %s / %s\n", percentile(cachedTimes, 50), percentile(cachedTimes, 95))
	fmt.Printf("  Cache hits/misses: %d / %d\n", hits, misses)
}

func percentile(times []time.Duration, p int) time.Duration {
	if len(times) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := (len(sorted)*p + 99) / 100
	if idx < 1 {
		idx = 1
	}
	return sorted[idx-1]
}
