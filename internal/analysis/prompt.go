// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	// MaxAnswerPapers is the number of papers embedded in a Q&A prompt.
	MaxAnswerPapers = 3

	// MaxReviewPapers is the number of papers embedded in a review prompt.
	MaxReviewPapers = 5
)

// systemPrompt is sent as the system message on every call.
const systemPrompt = `You are an expert academic research assistant with deep knowledge of scientific literature and research methodologies. Your goal is to help researchers understand papers, identify trends, and generate insights. Provide detailed and academically rigorous responses.`

var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`Please analyze this research paper in detail:

Title: {{.Title}}
Authors: {{.Authors}}
Abstract: {{.Summary}}

Provide the following:
1. Main Research Question
2. Methodology Overview
3. Key Findings
4. Theoretical Contributions
5. Practical Implications
6. Limitations and Future Work

Format your response in a structured manner suitable for academic review.`))

var answerPromptTmpl = template.Must(template.New("answer").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Based on these research papers:
{{range $i, $p := .Papers}}
Paper {{inc $i}}:
Title: {{$p.Title}}
Summary: {{$p.Summary}}
{{end}}
Please answer this research question:
{{.Question}}

Provide:
1. Direct answer to the question
2. Supporting evidence from the papers
3. Critical analysis
4. Related considerations
5. Potential limitations of the answer`))

var reviewPromptTmpl = template.Must(template.New("review").Parse(`Based on these recent papers in the field:
{{range .Papers}}
Title: {{.Title}}
Key Findings: {{.Summary}}
{{end}}
Please provide:
1. Synthesis of Current Research Trends
2. Identification of Research Gaps
3. Promising Future Research Directions
4. Methodological Recommendations
5. Potential Breakthrough Areas

Focus on actionable research directions that could lead to significant advances.`))

// AnalysisPrompt renders the single-paper analysis prompt.
func AnalysisPrompt(p types.Paper) (string, error) {
	return render(analysisPromptTmpl, struct {
		Title, Authors, Summary string
	}{p.Title, strings.Join(p.Authors, ", "), p.Summary})
}

// AnswerPrompt renders the Q&A prompt over the first MaxAnswerPapers papers.
func AnswerPrompt(question string, papers []types.Paper) (string, error) {
	return render(answerPromptTmpl, struct {
		Question string
		Papers   []types.Paper
	}{question, firstN(papers, MaxAnswerPapers)})
}

// ReviewPrompt renders the literature-review prompt over the first
// MaxReviewPapers papers.
func ReviewPrompt(papers []types.Paper) (string, error) {
	return render(reviewPromptTmpl, struct {
		Papers []types.Paper
	}{firstN(papers, MaxReviewPapers)})
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func firstN(papers []types.Paper, n int) []types.Paper {
	if len(papers) > n {
		return papers[:n]
	}
	return papers
}
