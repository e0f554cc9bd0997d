package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-talentmatch-backend/internal/domain"
	"go-talentmatch-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

var matchExportColumns = []string{
	"MATCH ID", "CANDIDATE ID", "CANDIDATE", "SCORE", "STATUS",
	"MATCHED SKILLS", "MISSING SKILLS", "CREATED AT",
}

func matchExportRow(m domain.Match) []any {
	name := ""
	if m.CandidateName != nil {
		name = *m.CandidateName
	}
	return []any{
		m.ID.String(),
		m.CandidateID,
		name,
		m.Score,
		string(m.Status),
		strings.Join(m.Details.MatchedSkills, ", "),
		strings.Join(m.Details.MissingSkills, ", "),
		m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ExportByJob renders every match of a job in ranking order. It returns the
// file bytes and a suggested file name.
func (u *matchUsecase) ExportByJob(ctx context.Context, jobID int64, format string) ([]byte, string, error) {
	const op = "matchUsecase.ExportByJob"

	if format == "" {
		format = ExportFormatXLSX
	}
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, "", apperror.Validation(fmt.Sprintf("Unsupported export format %q", format)).WithOp(op)
	}

	seq, err := u.ListByJob(ctx, jobID, domain.MatchFilter{})
	if err != nil {
		return nil, "", err
	}
	var matches []domain.Match
	for m, err := range seq {
		if err != nil {
			return nil, "", err
		}
		matches = append(matches, m)
	}

	stamp := time.Now().Format("20060102_150405")
	if format == ExportFormatCSV {
		data, err := exportMatchesCSV(matches)
		if err != nil {
			return nil, "", apperror.Internal(err).WithOp(op)
		}
		return data, fmt.Sprintf("job_%d_matches_%s.csv", jobID, stamp), nil
	}
	data, err := exportMatchesExcel(matches)
	if err != nil {
		return nil, "", apperror.Internal(err).WithOp(op)
	}
	return data, fmt.Sprintf("job_%d_matches_%s.xlsx", jobID, stamp), nil
}

func exportMatchesExcel(matches []domain.Match) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Matches"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range matchExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(matchExportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, m := range matches {
		for colIdx, value := range matchExportRow(m) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range matchExportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportMatchesCSV(matches []domain.Match) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(matchExportColumns); err != nil {
		return nil, err
	}
	for _, m := range matches {
		row := matchExportRow(m)
		record := make([]string, len(row))
		for i, v := range row {
			switch val := v.(type) {
			case int:
				record[i] = strconv.Itoa(val)
			case int64:
				record[i] = strconv.FormatInt(val, 10)
			default:
				record[i] = fmt.Sprint(val)
			}
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
