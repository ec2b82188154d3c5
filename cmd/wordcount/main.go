package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/langflix/internal/config"
	"github.com/example/langflix/internal/subtitles"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: wordcount <subtitle file>")
		fmt.Fprintln(os.Stderr, "Example: wordcount WMQW9MgEZws.json")
		os.Exit(1)
	}

	path := os.Args[1]
	if _, err := os.Stat(path); err != nil {
		// Bare names are looked up in the subtitle cache
		path = filepath.Join(config.String("LANGFLIX_DATA_DIR", "data"), "subtitles", os.Args[1])
	}

	subs, err := subtitles.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading subtitle file %s: %v\n", path, err)
		os.Exit(1)
	}

	count := subtitles.CountWords(subs)
	fmt.Printf("Word count for: %s\n", filepath.Base(path))
	fmt.Printf("  Total words: %d\n", count.Total)
	fmt.Printf("  Unique words: %d\n", count.Unique)
	fmt.Printf("  Total subtitle segments: %d\n", count.Segments)
}
