package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"solveit_backend/internal/model"
	"solveit_backend/internal/repository"
	"solveit_backend/pkg/logger"
	"solveit_backend/pkg/monitoring"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const unknownFrequency = "Unknown"

var (
	titleHeaders     = []string{"title", "question", "problem name"}
	linkHeaders      = []string{"link", "leetcode link", "url"}
	topicHeaders     = []string{"topics", "topic"}
	frequencyHeaders = []string{"frequency"}

	slugPattern = regexp.MustCompile(`[^a-z0-9]`)
)

// ParsedQuestion is one usable catalog row.
type ParsedQuestion struct {
	Title     string
	Link      string
	Topic     string
	Frequency string
}

// IngestResult summarises one ingestion run.
type IngestResult struct {
	Source    string   `json:"source"`
	Companies int      `json:"companies"`
	Questions int64    `json:"questions"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors,omitempty"`
}

type IngestService struct {
	CompanyRepo  *repository.CompanyRepository
	QuestionRepo *repository.QuestionRepository
}

func NewIngestService(companyRepo *repository.CompanyRepository, questionRepo *repository.QuestionRepository) *IngestService {
	return &IngestService{
		CompanyRepo:  companyRepo,
		QuestionRepo: questionRepo,
	}
}

// Run fetches the source and imports it.
func (s *IngestService) Run(ctx context.Context, src CatalogSource) (*IngestResult, error) {
	dir, cleanup, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog from %s: %w", src.Name(), err)
	}
	defer cleanup()

	result, err := s.ImportDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	result.Source = src.Name()
	return result, nil
}

// ImportDir imports every company directory under dir. A failing company is
// recorded in the result and does not stop the run.
func (s *IngestService) ImportDir(ctx context.Context, dir string) (*IngestResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Source: dir}
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		company := entry.Name()
		file, ok := findCatalogFile(filepath.Join(dir, company))
		if !ok {
			continue
		}

		upserted, skipped, err := s.importCompany(ctx, company, file)
		result.Skipped += skipped
		if err != nil {
			logger.Log.Warn("Failed to import company", zap.String("company", company), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", company, err))
			continue
		}
		result.Companies++
		result.Questions += upserted
	}

	monitoring.IngestedQuestions.Add(float64(result.Questions))
	logger.Log.Info("Catalog ingestion finished",
		zap.String("source", result.Source),
		zap.Int("companies", result.Companies),
		zap.Int64("questions", result.Questions),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *IngestService) importCompany(ctx context.Context, name, file string) (int64, int, error) {
	rows, err := readCatalogRows(file)
	if err != nil {
		return 0, 0, err
	}
	parsed, skipped := ParseRows(rows)
	if len(parsed) == 0 {
		return 0, skipped, nil
	}

	company, err := s.CompanyRepo.Upsert(ctx, name, Slugify(name))
	if err != nil {
		return 0, skipped, fmt.Errorf("upsert company: %w", err)
	}

	questions := make([]model.Question, 0, len(parsed))
	for _, p := range parsed {
		questions = append(questions, model.Question{
			CompanyID:   company.ID,
			Title:       p.Title,
			Frequency:   p.Frequency,
			LeetcodeURL: p.Link,
			Topic:       p.Topic,
		})
	}

	upserted, err := s.QuestionRepo.UpsertBatch(ctx, questions)
	if err != nil {
		return 0, skipped, fmt.Errorf("upsert questions: %w", err)
	}
	return upserted, skipped, nil
}

func findCatalogFile(dir string) (string, bool) {
	for _, name := range CatalogFileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

func readCatalogRows(file string) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(file), ".xlsx") {
		return readXLSXRows(file)
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSVRows(f)
}

// ReadCSVRows reads a catalog CSV leniently: ragged rows are allowed and a UTF-8 BOM
// on the header is dropped.
func ReadCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// readXLSXRows returns the rows of the first sheet.
func readXLSXRows(file string) ([][]string, error) {
	f, err := excelize.OpenFile(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// ParseRows maps raw rows (header first) to questions. Rows without a title or a
// link are skipped. A title repeated within the file keeps its last row, in the
// position of its first.
func ParseRows(rows [][]string) ([]ParsedQuestion, int) {
	if len(rows) == 0 {
		return nil, 0
	}

	header := rows[0]
	titleCol := findColumn(header, titleHeaders)
	linkCol := findColumn(header, linkHeaders)
	topicCol := findColumn(header, topicHeaders)
	freqCol := findColumn(header, frequencyHeaders)

	index := make(map[string]int)
	var parsed []ParsedQuestion
	skipped := 0

	for _, row := range rows[1:] {
		q := ParsedQuestion{
			Title:     cell(row, titleCol),
			Link:      cell(row, linkCol),
			Topic:     cell(row, topicCol),
			Frequency: cell(row, freqCol),
		}
		if q.Title == "" || q.Link == "" {
			skipped++
			continue
		}
		if q.Topic == "" {
			q.Topic = model.UncategorizedTopic
		}
		if q.Frequency == "" {
			q.Frequency = unknownFrequency
		}

		if i, ok := index[q.Title]; ok {
			parsed[i] = q
			continue
		}
		index[q.Title] = len(parsed)
		parsed = append(parsed, q)
	}
	return parsed, skipped
}

func findColumn(header []string, aliases []string) int {
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, alias := range aliases {
			if name == alias {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Slugify lowercases name and replaces each character outside [a-z0-9] with a dash.
// Existing links depend on this exact mapping.
func Slugify(name string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(name), "-")
}
