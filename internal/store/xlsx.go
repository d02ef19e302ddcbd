package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/entity"
	"github.com/oluwaseun-ajayi/postsync/internal/normalize"
)

// Column layout of the job sheet. Row 1 is the header; job rows start at 2.
var sheetHeaders = []string{
	"Instagram URL", "Account Handle", "Likes Count", "Comments Count",
	"Views Count", "Content Type", "Posted Date", "Caption Text",
	"Hashtags Count", "Location", "Last Fetched IST", "Processing Status",
	"Last Updated IST", "Retry Count",
}

const (
	xlsxFirstDataRow = 2
	xlsxLastCol      = "N"

	lastUpdatedLayout = "02/01/2006 15:04 IST"
)

// XLSXStore keeps job rows in a worksheet, one row per job, mirroring the
// layout a human coordinator maintains by hand.
type XLSXStore struct {
	path   string
	sheet  string
	file   *excelize.File
	logger *slog.Logger

	headerStyle  int
	successStyle int
	failureStyle int
}

// OpenXLSX opens the workbook at path, creating it with a styled header row
// when it does not exist yet.
func OpenXLSX(path, sheet string, logger *slog.Logger) (*XLSXStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &XLSXStore{path: path, sheet: sheet, logger: logger}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.file = excelize.NewFile()
		if err := s.ensureSheet(); err != nil {
			return nil, err
		}
		if s.sheet != "Sheet1" {
			_ = s.file.DeleteSheet("Sheet1")
		}
		if err := s.InitHeaders(); err != nil {
			return nil, err
		}
		if err := s.file.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		logger.Info("store.xlsx.created", "path", path, "sheet", sheet)
		return s, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	s.file = f
	if err := s.ensureSheet(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *XLSXStore) ensureSheet() error {
	idx, err := s.file.GetSheetIndex(s.sheet)
	if err != nil {
		return err
	}
	if idx == -1 {
		if _, err := s.file.NewSheet(s.sheet); err != nil {
			return fmt.Errorf("create sheet: %w", err)
		}
	}
	activeIndex, _ := s.file.GetSheetIndex(s.sheet)
	s.file.SetActiveSheet(activeIndex)
	return s.initStyles()
}

func (s *XLSXStore) initStyles() error {
	var err error
	s.headerStyle, err = s.file.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"334D99"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	s.successStyle, err = s.file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6FFE6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("success style: %w", err)
	}
	s.failureStyle, err = s.file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFE6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failure style: %w", err)
	}
	return nil
}

// InitHeaders writes (or repairs) the header row with its formatting.
func (s *XLSXStore) InitHeaders() error {
	for i, h := range sheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := s.file.SetCellValue(s.sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := s.file.SetCellStyle(s.sheet, "A1", xlsxLastCol+"1", s.headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	// Widen the reference, caption and timestamp columns.
	_ = s.file.SetColWidth(s.sheet, "A", "A", 48)
	_ = s.file.SetColWidth(s.sheet, "H", "H", 60)
	_ = s.file.SetColWidth(s.sheet, "K", "M", 22)
	return nil
}

// Append adds a new job row with the given reference. Appending is owned by
// the sheet owner, not the engine, so it is not part of the JobStore
// contract.
func (s *XLSXStore) Append(ctx context.Context, rawReference string) error {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}
	rowNum := len(rows) + 1
	if rowNum < xlsxFirstDataRow {
		rowNum = xlsxFirstDataRow
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := s.file.SetCellValue(s.sheet, cell, rawReference); err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return s.file.Save()
}

// ReadAll returns every job row below the header, in sheet order.
func (s *XLSXStore) ReadAll(ctx context.Context) ([]entity.Job, error) {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < xlsxFirstDataRow {
		return nil, nil
	}
	jobs := make([]entity.Job, 0, len(rows)-1)
	for _, row := range rows[1:] {
		jobs = append(jobs, rowToJob(row))
	}
	return jobs, nil
}

// WriteRow replaces one job row and recolors it to match the outcome.
func (s *XLSXStore) WriteRow(ctx context.Context, rowIndex int, job entity.Job) error {
	if rowIndex < 0 {
		return fmt.Errorf("row index %d out of range", rowIndex)
	}
	rowNum := rowIndex + xlsxFirstDataRow
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := s.file.SetSheetRow(s.sheet, cell, jobToRow(job)); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}

	style := 0
	switch job.Status {
	case constants.JobStatusSuccess:
		style = s.successStyle
	case constants.JobStatusInvalid, constants.JobStatusUnavailable, constants.JobStatusExhausted:
		style = s.failureStyle
	}
	rangeStart := fmt.Sprintf("A%d", rowNum)
	rangeEnd := fmt.Sprintf("%s%d", xlsxLastCol, rowNum)
	if err := s.file.SetCellStyle(s.sheet, rangeStart, rangeEnd, style); err != nil {
		return fmt.Errorf("style row %d: %w", rowNum, err)
	}

	if err := s.file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// Save flushes pending changes and Close releases the workbook.
func (s *XLSXStore) Save() error {
	return s.file.Save()
}

func (s *XLSXStore) Close() error {
	return s.file.Close()
}

func jobToRow(job entity.Job) *[]any {
	row := make([]any, len(sheetHeaders))
	row[0] = job.RawReference
	if job.Status == constants.JobStatusSuccess && job.Attributes != nil {
		a := job.Attributes
		row[1] = "@" + a.Account
		row[2] = formatCount(a.Likes)
		row[3] = formatCount(a.Comments)
		row[4] = formatCount(a.Views)
		row[5] = string(a.ContentType)
		row[6] = a.PostedAt
		row[7] = a.Caption
		row[8] = strconv.Itoa(a.TagCount)
		row[9] = a.Location
		row[10] = a.FetchedAt
	} else {
		for i := 1; i <= 10; i++ {
			row[i] = ""
		}
	}
	row[11] = string(job.Status)
	row[12] = normalize.Timestamp(job.LastUpdated)
	row[13] = strconv.Itoa(job.AttemptCount)
	return &row
}

func rowToJob(cells []string) entity.Job {
	get := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	job := entity.Job{
		RawReference: get(0),
		Status:       constants.CanonicalizeStatus(get(11)),
		AttemptCount: int(parseCount(get(13))),
	}
	if t, err := time.Parse(lastUpdatedLayout, get(12)); err == nil {
		job.LastUpdated = t
	}
	if job.Status == constants.JobStatusSuccess {
		job.Attributes = &entity.AttributeSet{
			Account:     strings.TrimPrefix(get(1), "@"),
			Likes:       parseCount(get(2)),
			Comments:    parseCount(get(3)),
			Views:       parseCount(get(4)),
			ContentType: constants.ContentType(get(5)),
			PostedAt:    get(6),
			Caption:     get(7),
			TagCount:    int(parseCount(get(8))),
			Location:    get(9),
			FetchedAt:   get(10),
		}
	}
	return job
}
