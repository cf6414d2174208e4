// Package csvload reads the scheme catalogue export into normalized records.
//
// Column layout (header row skipped):
//
//	0 name  1 slug  2 details  3 benefits  4 eligibility  5 application
//	6 documents  7 level  8 category  9 (unused)  10 tags
//
// Rows with fewer than MinColumns cells are skipped. Quoted fields may span
// lines.
package csvload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corey/sahayak/internal/domain/corpus"
	"github.com/corey/sahayak/internal/ports"
)

// MinColumns is the fewest cells a row needs to become a record.
const MinColumns = 8

const (
	colName = iota
	colSlug
	colDetails
	colBenefits
	colEligibility
	colApplication
	colDocuments
	colLevel
	colCategory
	_
	colTags
)

// DefaultLevel is used when the level cell is blank.
const DefaultLevel = "Central"

// schemeNamespace seeds name-derived IDs so the same scheme name maps to the
// same ID across loads.
var schemeNamespace = uuid.MustParse("6f1c5a52-0d7e-4c1b-9a57-3e2f8b7d4c10")

// ErrEmpty is returned when the input holds no usable rows.
var ErrEmpty = errors.New("csv has no scheme rows")

// Loader turns CSV rows into scheme records using the catalog for category,
// state and popularity normalization.
type Loader struct {
	catalog *corpus.Catalog
	log     *zap.Logger
	now     func() time.Time
}

// NewLoader creates a loader. A nil logger discards skipped-row warnings.
func NewLoader(catalog *corpus.Catalog, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{catalog: catalog, log: log, now: time.Now}
}

// Parse reads all rows from r. Malformed rows are logged and skipped; only a
// read failure of the stream itself is an error.
func (l *Loader) Parse(r io.Reader) ([]*ports.SchemeRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		records []*ports.SchemeRecord
		seenIDs = make(map[string]int)
		skipped int
		rowNum  int
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				l.log.Warn("skipping malformed csv row", zap.Int("line", pe.Line), zap.Error(err))
				skipped++
				continue
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if rowNum == 1 {
			continue // header
		}
		if len(row) < MinColumns {
			skipped++
			l.log.Debug("skipping short csv row", zap.Int("row", rowNum), zap.Int("cells", len(row)))
			continue
		}

		rec := l.record(row)
		if rec.Name == "" {
			skipped++
			continue
		}
		if n := seenIDs[rec.ID]; n > 0 {
			seenIDs[rec.ID] = n + 1
			rec.ID = rec.ID + "-" + strconv.Itoa(n+1)
		} else {
			seenIDs[rec.ID] = 1
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmpty
	}
	l.catalog.MarkPopular(records)
	if skipped > 0 {
		l.log.Info("csv rows skipped", zap.Int("skipped", skipped), zap.Int("loaded", len(records)))
	}
	return records, nil
}

func (l *Loader) record(row []string) *ports.SchemeRecord {
	cell := func(i int) string {
		if i >= len(row) {
			return ""
		}
		return cleanText(row[i])
	}

	level := cell(colLevel)
	if level == "" {
		level = DefaultLevel
	}
	rec := &ports.SchemeRecord{
		Name:            cell(colName),
		Slug:            cell(colSlug),
		DetailsText:     cell(colDetails),
		BenefitsText:    cell(colBenefits),
		EligibilityText: cell(colEligibility),
		ApplicationText: cell(colApplication),
		DocumentsText:   cell(colDocuments),
		Level:           level,
		CategoryText:    cell(colCategory),
		TagsText:        cell(colTags),
		IsStateSpecific: strings.EqualFold(level, "state"),
	}
	rec.ID = rec.Slug
	if rec.ID == "" {
		rec.ID = SchemeID(rec.Name)
	}
	rec.Categories = l.catalog.NormalizeCategory(rec.CategoryText)
	if rec.IsStateSpecific {
		rec.State = l.catalog.ExtractState(rec.Name, rec.DetailsText)
	}
	return rec
}

// LoadFile parses the CSV at path into a snapshot stamped with the load time.
func (l *Loader) LoadFile(path string) (*ports.CorpusSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := l.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ports.CorpusSnapshot{
		Source:   path,
		LoadedAt: l.now().Unix(),
		Schemes:  records,
	}, nil
}

// SchemeID derives a stable ID from a scheme name.
func SchemeID(name string) string {
	return uuid.NewSHA1(schemeNamespace, []byte(strings.ToLower(strings.TrimSpace(name)))).String()
}

// cleanText strips stray wrapping quotes and doubled quotes left by
// hand-edited exports, then trims.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	s = strings.ReplaceAll(s, `""`, `"`)
	return strings.TrimSpace(s)
}
