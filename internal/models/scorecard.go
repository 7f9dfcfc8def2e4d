package models

// Finding is a piece of advice derived from a stage result
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// AreaScore is the 0-100 score of one analysis area
type AreaScore struct {
	Area  string  `json:"area"`
	Score float64 `json:"score"`
}

// Scorecard summarizes a report with per-area scores and a letter grade
type Scorecard struct {
	Scores     []AreaScore `json:"scores"`
	Overall    float64     `json:"overall"`
	Grade      string      `json:"grade"`
	Strengths  []string    `json:"strengths"`
	Weaknesses []string    `json:"weaknesses"`
	Findings   []Finding   `json:"findings"`
}
