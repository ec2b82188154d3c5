package excel

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/langflix/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath      string // Path to the Excel or CSV file
	EnglishColumn string // Column with the English prompt
	SpanishColumn string // Column with the Spanish translations
	SheetName     string // Sheet to import, the first sheet when empty
	StartRow      int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		EnglishColumn: "A",
		SpanishColumn: "B",
		StartRow:      2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Imported       int
	Skipped        int
	Errors         []string
}

// ImportDeck reads a deck from an Excel or CSV file. Each row holds an
// English prompt and its Spanish translations, alternatives separated by
// ";" or "/". Words are ordered by their row.
func ImportDeck(config ImportConfig, deckID, deckName string) (*models.Deck, *ImportResult, error) {
	if deckID == "" {
		return nil, nil, fmt.Errorf("deck id cannot be empty")
	}

	var rows [][]string
	var err error
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, nil, err
	}

	deck := &models.Deck{ID: deckID, Name: deckName, Words: make([]models.Word, 0, len(rows))}
	result := &ImportResult{Errors: make([]string, 0)}
	seen := make(map[string]int)

	englishIdx := columnToIndex(config.EnglishColumn)
	spanishIdx := columnToIndex(config.SpanishColumn)

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}
		if isBlank(row) {
			continue
		}
		result.TotalProcessed++

		word, err := parseRow(row, englishIdx, spanishIdx)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if prev, ok := seen[word.Key()]; ok {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: duplicate of row %d (%s)", rowNum, prev, word.Key()))
			continue
		}
		seen[word.Key()] = rowNum

		word.Order = len(deck.Words) + 1
		deck.Words = append(deck.Words, word)
		result.Imported++
	}

	return deck, result, nil
}

// WriteDeck stores a deck as an indented JSON document
func WriteDeck(path string, deck *models.Deck) error {
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode deck: %v", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create deck directory: %v", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write deck: %v", err)
	}
	return nil
}

// readExcel returns every row of the requested sheet
func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

// readCSV returns every record of a CSV file
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseRow extracts a word from one row
func parseRow(row []string, englishIdx, spanishIdx int) (models.Word, error) {
	var english, spanish string
	if englishIdx < len(row) {
		english = cleanWord(row[englishIdx])
	}
	if spanishIdx < len(row) {
		spanish = row[spanishIdx]
	}

	if english == "" {
		return models.Word{}, fmt.Errorf("english word cannot be empty")
	}
	translations := splitTranslations(spanish)
	if len(translations) == 0 {
		return models.Word{}, fmt.Errorf("translation cannot be empty")
	}
	return models.Word{English: english, Spanish: translations}, nil
}

// splitTranslations splits "lo siento; perdón" or "lo siento/perdón" into alternatives
func splitTranslations(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = cleanWord(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cleanWord drops trailing notes in parentheses, "ir (fui, ido)" becomes "ir"
func cleanWord(word string) string {
	if idx := strings.Index(word, "("); idx > 0 {
		return strings.TrimSpace(word[:idx])
	}
	return strings.TrimSpace(word)
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
