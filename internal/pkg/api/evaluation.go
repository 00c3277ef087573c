package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EvaluationKind indicates which variant an evaluation value carries
type EvaluationKind int

const (
	// EvalUnscored - no evaluation produced yet
	EvalUnscored EvaluationKind = iota
	// EvalFreeText - plain string evaluation
	EvalFreeText
	// EvalStructured - structured evaluation object
	EvalStructured
)

// Evaluation is a tagged variant of the scoring service evaluation value.
// The service returns it as null, a free-text string, or a structured
// object. The shape is resolved once here, at the boundary.
type Evaluation struct {
	Kind EvaluationKind
	Text string

	Assessment          string
	Skills              []string
	Strengths           []string
	Weaknesses          []string
	Justification       string
	Insights            []string
	Recommendations     []string
	FinalRecommendation string
}

type structuredEvaluation struct {
	OverallAssessment   string   `json:"overall_assessment"`
	SkillsDemonstrated  []string `json:"skills_demonstrated"`
	Strengths           []string `json:"strengths"`
	Weaknesses          []string `json:"weaknesses"`
	Justification       string   `json:"justification"`
	KeyInsights         []string `json:"key_insights"`
	Recommendations     []string `json:"recommendations"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	FinalRecommendation string   `json:"final_recommendation,omitempty"`
}

// UnmarshalJSON resolves the variant
func (e *Evaluation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*e = Evaluation{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("can't parse evaluation string: %w", err)
		}
		*e = Evaluation{Kind: EvalFreeText, Text: s}
		return nil
	case '{':
		var se structuredEvaluation
		if err := json.Unmarshal(b, &se); err != nil {
			return fmt.Errorf("can't parse evaluation object: %w", err)
		}
		res := Evaluation{Kind: EvalStructured,
			Assessment: se.OverallAssessment, Skills: se.SkillsDemonstrated,
			Strengths: se.Strengths, Weaknesses: se.Weaknesses,
			Justification: se.Justification, Insights: se.KeyInsights,
			Recommendations: se.Recommendations, FinalRecommendation: se.FinalRecommendation}
		if len(se.AreasForImprovement) > 0 && len(res.Weaknesses) == 0 {
			res.Weaknesses = se.AreasForImprovement
		}
		*e = res
		return nil
	}
	return fmt.Errorf("unexpected evaluation value: %s", string(b[:min(len(b), 20)]))
}

// MarshalJSON writes the variant back in the service wire shape
func (e Evaluation) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EvalUnscored:
		return []byte("null"), nil
	case EvalFreeText:
		return json.Marshal(e.Text)
	}
	return json.Marshal(&structuredEvaluation{OverallAssessment: e.Assessment,
		SkillsDemonstrated: e.Skills, Strengths: e.Strengths, Weaknesses: e.Weaknesses,
		Justification: e.Justification, KeyInsights: e.Insights,
		Recommendations: e.Recommendations, FinalRecommendation: e.FinalRecommendation})
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
