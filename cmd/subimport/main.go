package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/langflix/internal/config"
	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/internal/subtitles"
)

func main() {
	force := flag.Bool("force", false, "replace subtitles that are already cached")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: subimport [-force] <video url> <captions.json>")
		fmt.Fprintln(os.Stderr, `Example: subimport "https://www.youtube.com/embed/WMQW9MgEZws" captions.json`)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cache := subtitles.NewCache(cfg.SubtitlesDir(), log)
	id, n, err := cache.Import(flag.Arg(0), flag.Arg(1), *force)
	if err != nil {
		log.Fatal("Subtitle import failed", "video_id", id, "error", err)
	}
	fmt.Printf("Cached %d segments at %s\n", n, cache.Path(id))
}
