// Package parse reads job-posting CSV files into JobRecords, recording
// unparsable rows as diagnostics instead of failing the run.
package parse

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rcliao/skillgraph/internal/config"
	"github.com/rcliao/skillgraph/internal/model"
)

// Well-known input column headers.
const (
	colJobTitle        = "Job Title"
	colCompanyName     = "Company Name"
	colPostedAt        = "Posted At"
	colScheduleType    = "Schedule Type"
	colWorkFromHome    = "Work From Home"
	colDistrict        = "District"
	colNCOCode         = "NCO Code"
	colTokenCount      = "token_count"
	colSimilaritySpec  = "Highest Similarity Spec"
	colSimilarityScore = "Highest Similarity Score Spec"
	colSalaryMean      = "salary_mean_inr_month"
	colSalaryCurrency  = "salary_currency_unit"
	colSalarySource    = "salary_source"
)

// BadRow records a row that could not be parsed. The row loop keeps
// going; bad rows are exported for inspection.
type BadRow struct {
	RowIndex    int    `json:"row_idx"`
	JobTitle    string `json:"job_title"`
	CompanyName string `json:"company_name"`
	Error       string `json:"error"`
}

// Parser reads the input CSV under the configured column mappings.
type Parser struct {
	cfg *config.Config

	BadRows    []BadRow
	TotalRows  int
	ParsedRows int

	columns  []string
	colIndex map[string]int
}

// NewParser returns a parser for the given config.
func NewParser(cfg *config.Config) *Parser {
	return &Parser{cfg: cfg}
}

// Columns returns the header of the last parsed file.
func (p *Parser) Columns() []string { return p.columns }

// ParseFile reads every row of the CSV at path. Row-level failures are
// collected in BadRows; only file-level problems return an error.
func (p *Parser) ParseFile(path string) ([]model.JobRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return p.parse(f)
}

func (p *Parser) parse(r io.Reader) ([]model.JobRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	p.columns = header
	p.colIndex = make(map[string]int, len(header))
	for i, name := range header {
		p.colIndex[strings.TrimSpace(name)] = i
	}

	var rows []model.JobRecord
	idx := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read row %d: %w", idx, err)
		}

		p.TotalRows++
		row, perr := p.parseRecord(rec, idx)
		if perr != nil {
			p.BadRows = append(p.BadRows, BadRow{
				RowIndex:    idx,
				JobTitle:    p.field(rec, colJobTitle),
				CompanyName: p.field(rec, colCompanyName),
				Error:       perr.Error(),
			})
		} else {
			p.ParsedRows++
			rows = append(rows, row)
		}
		idx++
	}

	return rows, nil
}

// parseRecord converts one CSV record into a JobRecord. The skills list
// is parsed first since it is the only part that can reject the row.
func (p *Parser) parseRecord(rec []string, idx int) (model.JobRecord, error) {
	skills, err := parseSkills(p.field(rec, p.cfg.SkillsColumn))
	if err != nil {
		return model.JobRecord{}, err
	}

	category := p.field(rec, p.cfg.CategoryColumn)
	if category == "" {
		category = p.field(rec, p.cfg.FallbackCategoryColumn)
	}

	return model.JobRecord{
		JobID:                   p.jobID(rec, idx),
		JobTitle:                p.field(rec, colJobTitle),
		CompanyName:             p.field(rec, colCompanyName),
		PostedAt:                p.field(rec, colPostedAt),
		ScheduleType:            p.field(rec, colScheduleType),
		WorkFromHome:            parseTriState(p.field(rec, colWorkFromHome)),
		District:                p.field(rec, colDistrict),
		NCOCode:                 p.field(rec, colNCOCode),
		GroupName:               p.field(rec, p.cfg.FallbackCategoryColumn),
		AssignedOccupationGroup: category,
		TokenCount:              safeInt(p.field(rec, colTokenCount)),
		HighestSimilaritySpec:   p.field(rec, colSimilaritySpec),
		HighestSimilarityScore:  safeFloat(p.field(rec, colSimilarityScore)),
		SalaryMean:              safeFloat(p.field(rec, colSalaryMean)),
		SalaryCurrency:          p.field(rec, colSalaryCurrency),
		SalarySource:            p.field(rec, colSalarySource),
		Skills:                  skills,
		RowIndex:                idx,
	}, nil
}

// field returns the cleaned cell value for a column, "" when the column
// is absent or holds an NA token.
func (p *Parser) field(rec []string, column string) string {
	i, ok := p.colIndex[column]
	if !ok || i >= len(rec) {
		return ""
	}
	return cleanValue(rec[i])
}

// jobID uses the configured id column when set, falling back to a
// deterministic hash of identifying fields plus the row index.
func (p *Parser) jobID(rec []string, idx int) string {
	if p.cfg.JobIDColumn != "" && p.cfg.JobIDColumn != "auto" {
		if id := p.field(rec, p.cfg.JobIDColumn); id != "" {
			return id
		}
	}

	key := fmt.Sprintf("%s|%s|%s|%d",
		p.field(rec, colJobTitle),
		p.field(rec, colCompanyName),
		p.field(rec, colDistrict),
		idx)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

var naTokens = map[string]struct{}{
	"NA": {}, "N/A": {}, "null": {}, "NULL": {}, "None": {}, "nan": {},
}

// cleanValue trims the cell and maps NA tokens to empty.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if _, ok := naTokens[v]; ok {
		return ""
	}
	return v
}

// parseTriState maps a work-from-home cell to "yes", "no", or "".
func parseTriState(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "y":
		return "yes"
	case "no", "false", "0", "n":
		return "no"
	default:
		return ""
	}
}

func safeFloat(v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func safeInt(v string) int {
	if v == "" {
		return 0
	}
	// Integer columns sometimes arrive as "123.0"
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
