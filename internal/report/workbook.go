package report

import (
	"fmt"

	"chapter-quiz-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	// Filename is the suggested download name for a workbook.
	Filename = "quiz_result.xlsx"
	// ContentType is the MIME type of a workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet = "Summary"
	reviewSheet  = "Review"

	colorCorrect = "4CAF50"
	colorWrong   = "F44336"
)

// Workbook renders a stored result as an .xlsx document with a summary sheet,
// a per-question review sheet and pie and column charts.
func Workbook(result domain.StoredResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := writeSummary(f, result); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}
	if _, err := f.NewSheet(reviewSheet); err != nil {
		return nil, err
	}
	if err := writeReview(f, result.Report); err != nil {
		return nil, fmt.Errorf("review sheet: %w", err)
	}
	if err := addCharts(f, result.Report); err != nil {
		return nil, fmt.Errorf("charts: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, result domain.StoredResult) error {
	r := result.Report
	rows := [][]interface{}{
		{"Quiz result"},
		{"Correct", r.CorrectCount},
		{"Wrong", r.WrongCount},
		{"Score", fmt.Sprintf("%.2f%%", r.ScorePercent)},
		{"Subject", result.Subject},
		{"Chapter", result.Chapter},
		{"Status", string(result.Status)},
		{"Finished", result.FinishedAt.UTC().Format("2006-01-02 15:04:05 MST")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", bold); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "B", 18)
}

func writeReview(f *excelize.File, r domain.ResultReport) error {
	header := []interface{}{"#", "Question", "Your answer", "Correct answer", "Status", "Point"}
	if err := f.SetSheetRow(reviewSheet, "A1", &header); err != nil {
		return err
	}

	correctStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: colorCorrect}})
	if err != nil {
		return err
	}
	wrongStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: colorWrong}})
	if err != nil {
		return err
	}

	for i, a := range r.Answers {
		status, point, style := "Wrong", 0, wrongStyle
		if a.IsCorrect {
			status, point, style = "Correct", 1, correctStyle
		}
		row := []interface{}{a.Number, a.Question, a.UserAnswer, a.CorrectAnswer, status, point}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(reviewSheet, cell, &row); err != nil {
			return err
		}
		answerCell, err := excelize.CoordinatesToCellName(3, i+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(reviewSheet, answerCell, answerCell, style); err != nil {
			return err
		}
	}
	return f.SetColWidth(reviewSheet, "B", "D", 32)
}

func addCharts(f *excelize.File, r domain.ResultReport) error {
	pie := &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       "Summary!$A$1",
			Categories: "Summary!$A$2:$A$3",
			Values:     "Summary!$B$2:$B$3",
		}},
		Title:  []excelize.RichTextRun{{Text: "Correct vs wrong"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	}
	if err := f.AddChart(summarySheet, "D2", pie); err != nil {
		return err
	}

	if len(r.Answers) == 0 {
		return nil
	}
	last := len(r.Answers) + 1
	column := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "Review!$F$1",
			Categories: fmt.Sprintf("Review!$A$2:$A$%d", last),
			Values:     fmt.Sprintf("Review!$F$2:$F$%d", last),
			Fill:       excelize.Fill{Type: "pattern", Color: []string{colorCorrect}, Pattern: 1},
		}},
		Title:  []excelize.RichTextRun{{Text: "1 = correct, 0 = wrong"}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
	return f.AddChart(reviewSheet, "H2", column)
}
