package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/langflix/internal/excel"
	"github.com/example/langflix/internal/logger"
)

func main() {
	cfg := excel.DefaultImportConfig()
	deckID := flag.String("id", "", "deck id, for example deck-4")
	name := flag.String("name", "", "deck display name")
	out := flag.String("out", "", "output file (default data/decks/<id>.json)")
	flag.StringVar(&cfg.EnglishColumn, "english", cfg.EnglishColumn, "column with the English words")
	flag.StringVar(&cfg.SpanishColumn, "spanish", cfg.SpanishColumn, "column with the Spanish translations")
	flag.StringVar(&cfg.SheetName, "sheet", "", "sheet to import (default first sheet)")
	flag.IntVar(&cfg.StartRow, "start-row", cfg.StartRow, "first row to import, 1-based")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if flag.NArg() != 1 || *deckID == "" {
		fmt.Fprintln(os.Stderr, "Usage: deckimport -id <deck id> [-name <name>] <file.xlsx|file.csv>")
		os.Exit(2)
	}
	cfg.FilePath = flag.Arg(0)
	if *name == "" {
		*name = *deckID
	}
	if *out == "" {
		*out = filepath.Join("data", "decks", *deckID+".json")
	}

	deck, result, err := excel.ImportDeck(cfg, *deckID, *name)
	if err != nil {
		log.Fatal("Import failed", "file", cfg.FilePath, "error", err)
	}
	for _, msg := range result.Errors {
		log.Warn("Skipped row", "detail", msg)
	}
	if err := excel.WriteDeck(*out, deck); err != nil {
		log.Fatal("Failed to write deck", "file", *out, "error", err)
	}
	log.Info("Deck imported", "deck_id", deck.ID, "words", result.Imported, "skipped", result.Skipped, "out", *out)
}
