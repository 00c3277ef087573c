package report

import (
	"fmt"
	"strings"

	"github.com/airenas/viva/internal/pkg/api"
)

// Render formats the report as readable text for console output or saving
func Render(r *api.Report) string {
	if r == nil {
		return ""
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Interview Report\n")
	fmt.Fprintf(sb, "================\n")
	fmt.Fprintf(sb, "ID:        %s\n", r.InterviewID)
	fmt.Fprintf(sb, "Role:      %s\n", r.RoleTitle)
	fmt.Fprintf(sb, "Answered:  %d/%d\n", r.CompletedQuestions, r.TotalQuestions)
	fmt.Fprintf(sb, "AI status: %s\n", processingStr(r.ProcessingComplete))
	for i, q := range r.Questions {
		fmt.Fprintf(sb, "\nQ%d: %s\n", i+1, q.QuestionText)
		if q.VideoPath != "" {
			fmt.Fprintf(sb, "  video:         %s\n", q.VideoPath)
		}
		if q.Transcription != "" {
			fmt.Fprintf(sb, "  transcription: %s\n", q.Transcription)
		}
		if q.Summary != "" {
			fmt.Fprintf(sb, "  summary:       %s\n", q.Summary)
		}
		writeEvaluation(sb, "  ", q.Evaluation)
	}
	if r.OverallEvaluation != nil {
		fmt.Fprintf(sb, "\nOverall\n-------\n")
		writeEvaluation(sb, "", r.OverallEvaluation)
	}
	return sb.String()
}

func processingStr(done bool) string {
	if done {
		return "complete"
	}
	return "in progress"
}

func writeEvaluation(sb *strings.Builder, indent string, e *api.Evaluation) {
	if e == nil {
		return
	}
	switch e.Kind {
	case api.EvalFreeText:
		fmt.Fprintf(sb, "%sevaluation:    %s\n", indent, e.Text)
	case api.EvalStructured:
		if e.Assessment != "" {
			fmt.Fprintf(sb, "%sassessment:    %s\n", indent, e.Assessment)
		}
		writeList(sb, indent, "skills", e.Skills)
		writeList(sb, indent, "strengths", e.Strengths)
		writeList(sb, indent, "weaknesses", e.Weaknesses)
		writeList(sb, indent, "insights", e.Insights)
		writeList(sb, indent, "recommendations", e.Recommendations)
		if e.Justification != "" {
			fmt.Fprintf(sb, "%sjustification: %s\n", indent, e.Justification)
		}
		if e.FinalRecommendation != "" {
			fmt.Fprintf(sb, "%sverdict:       %s\n", indent, e.FinalRecommendation)
		}
	}
}

func writeList(sb *strings.Builder, indent, name string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s%s:\n", indent, name)
	for _, it := range items {
		fmt.Fprintf(sb, "%s  - %s\n", indent, it)
	}
}
