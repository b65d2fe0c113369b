package report

import (
	"strconv"

	"chapter-quiz-service/internal/domain"
)

// Breakdown feeds the correct/wrong pie chart.
type Breakdown struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// Point is one bar of the per-question series: 1 when correct, 0 otherwise.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ChartData is everything a chart renderer needs for one result.
type ChartData struct {
	Breakdown    Breakdown `json:"breakdown"`
	Series       []Point   `json:"series"`
	ScorePercent float64   `json:"scorePercent"`
}

// Charts derives chart inputs from a report, preserving question order.
func Charts(r domain.ResultReport) ChartData {
	data := ChartData{
		Breakdown:    Breakdown{Correct: r.CorrectCount, Wrong: r.WrongCount},
		Series:       make([]Point, 0, len(r.Answers)),
		ScorePercent: r.ScorePercent,
	}
	for i, a := range r.Answers {
		p := Point{Label: "Q" + strconv.Itoa(i+1)}
		if a.IsCorrect {
			p.Value = 1
		}
		data.Series = append(data.Series, p)
	}
	return data
}
