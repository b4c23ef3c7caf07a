package catalog

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/example/vocabot/pkg/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// maxFieldLength bounds a single original or translation
const maxFieldLength = 100

// wordPattern accepts letters in any script plus the few punctuation
// marks that occur in dictionary entries.
var wordPattern = regexp.MustCompile(`^[\p{L} .'-]+$`)

// Store is the persistence surface the importer needs
type Store interface {
	BulkImport(ctx context.Context, pairs []models.WordPair) (inserted, duplicate int, err error)
}

// Report summarizes one import run. Malformed lines are skipped and
// counted, never fatal.
type Report struct {
	TotalLines int
	Inserted   int
	Duplicate  int
	Malformed  int
}

func (r Report) String() string {
	return fmt.Sprintf("lines=%d inserted=%d duplicate=%d malformed=%d",
		r.TotalLines, r.Inserted, r.Duplicate, r.Malformed)
}

// Importer loads word catalogs from text, CSV or XLSX files
type Importer struct {
	store Store
	log   *zap.Logger
}

// NewImporter creates an importer writing into the given store
func NewImporter(store Store, log *zap.Logger) *Importer {
	return &Importer{store: store, log: log}
}

// ImportFile parses the file by extension and bulk-imports its valid
// pairs in a single transaction.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Report, error) {
	var (
		pairs  []models.WordPair
		report = &Report{}
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		pairs, err = i.parseExcel(path, report)
	case ".csv":
		pairs, err = i.parseCSV(path, report)
	default:
		pairs, err = i.parseText(path, report)
	}
	if err != nil {
		return nil, err
	}

	inserted, duplicate, err := i.store.BulkImport(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("failed to import catalog %s: %w", filepath.Base(path), err)
	}
	report.Inserted = inserted
	report.Duplicate = duplicate

	i.log.Info("catalog imported",
		zap.String("file", filepath.Base(path)),
		zap.Int("lines", report.TotalLines),
		zap.Int("inserted", report.Inserted),
		zap.Int("duplicate", report.Duplicate),
		zap.Int("malformed", report.Malformed),
	)
	return report, nil
}

// parseText reads the line-oriented pipe format: `original|translation`
// with an optional trailing counter field that is ignored on import.
func (i *Importer) parseText(path string, report *Report) ([]models.WordPair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	var pairs []models.WordPair
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		report.TotalLines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 2 && len(parts) != 3 {
			i.logMalformed(report, line)
			continue
		}
		pair := models.WordPair{
			Original:    strings.TrimSpace(parts[0]),
			Translation: strings.TrimSpace(parts[1]),
		}
		if !validPair(pair) {
			i.logMalformed(report, line)
			continue
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return pairs, nil
}

func (i *Importer) parseCSV(path string, report *Report) ([]models.WordPair, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // allow a trailing counter column
	reader.LazyQuotes = true

	var pairs []models.WordPair
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		report.TotalLines++
		pairs = i.appendRow(pairs, record, report)
	}
	return pairs, nil
}

func (i *Importer) parseExcel(path string, report *Report) ([]models.WordPair, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	var pairs []models.WordPair
	for _, row := range rows {
		report.TotalLines++
		pairs = i.appendRow(pairs, row, report)
	}
	return pairs, nil
}

// appendRow validates one tabular row (original, translation, optional
// extras) and appends it when well formed.
func (i *Importer) appendRow(pairs []models.WordPair, fields []string, report *Report) []models.WordPair {
	if len(fields) < 2 {
		i.logMalformed(report, strings.Join(fields, ","))
		return pairs
	}
	pair := models.WordPair{
		Original:    strings.TrimSpace(fields[0]),
		Translation: strings.TrimSpace(fields[1]),
	}
	if !validPair(pair) {
		i.logMalformed(report, strings.Join(fields, ","))
		return pairs
	}
	return append(pairs, pair)
}

func (i *Importer) logMalformed(report *Report, line string) {
	report.Malformed++
	i.log.Debug("skipping malformed catalog line", zap.String("line", line))
}

func validPair(p models.WordPair) bool {
	return validField(p.Original) && validField(p.Translation)
}

func validField(s string) bool {
	return s != "" && len(s) <= maxFieldLength && wordPattern.MatchString(s)
}
