package debate

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/agora/pkg/rag"
)

// Aggregator orders and formats panel responses.
type Aggregator struct{}

// NewAggregator builds a response aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate assembles author responses into a panel response, highest
// relevance first. Ties keep their input order.
func (a *Aggregator) Aggregate(query string, responses []*rag.Response, totalTimeMs int64, selectionMethod string) *PanelResponse {
	sorted := make([]*rag.Response, len(responses))
	copy(sorted, responses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RelevanceScore > sorted[j].RelevanceScore
	})

	slog.Info("Aggregated responses",
		"count", len(sorted),
		"total_time_ms", totalTimeMs)

	return &PanelResponse{
		ID:              uuid.New().String(),
		Query:           query,
		Authors:         sorted,
		TotalTimeMs:     totalTimeMs,
		SelectionMethod: selectionMethod,
		Timestamp:       time.Now(),
	}
}

// FormatMarkdown renders a panel response as markdown.
func (a *Aggregator) FormatMarkdown(p *PanelResponse) string {
	var lines []string

	lines = append(lines, "# Virtual Debate Panel\n")
	lines = append(lines, fmt.Sprintf("**Query:** %s\n", p.Query))
	lines = append(lines, fmt.Sprintf("**Panel:** %d authors (%s selection)\n", p.AuthorCount(), p.SelectionMethod))
	lines = append(lines, "---\n")

	for i, resp := range p.Authors {
		lines = append(lines, fmt.Sprintf("## %d. %s", i+1, resp.AuthorName))
		lines = append(lines, fmt.Sprintf("*Relevance: %.2f*\n", resp.RelevanceScore))
		lines = append(lines, resp.Text)
		lines = append(lines, "\n---\n")
	}

	lines = append(lines, fmt.Sprintf("*Generated in %dms (%s)*",
		p.TotalTimeMs, p.Timestamp.Format("2006-01-02 15:04:05")))

	return strings.Join(lines, "\n")
}

// FormatPlainText renders a panel response for terminal output.
func (a *Aggregator) FormatPlainText(p *PanelResponse) string {
	rule := strings.Repeat("=", 80)
	sep := strings.Repeat("-", 80)

	var lines []string
	lines = append(lines, rule)
	lines = append(lines, "VIRTUAL DEBATE PANEL")
	lines = append(lines, rule)
	lines = append(lines, fmt.Sprintf("\nQuery: %s\n", p.Query))
	lines = append(lines, fmt.Sprintf("Panel: %d authors (%s selection)\n", p.AuthorCount(), p.SelectionMethod))
	lines = append(lines, sep)

	for i, resp := range p.Authors {
		lines = append(lines, fmt.Sprintf("\n[%d] %s", i+1, strings.ToUpper(resp.AuthorName)))
		lines = append(lines, fmt.Sprintf("Relevance: %.2f\n", resp.RelevanceScore))
		lines = append(lines, resp.Text)
		lines = append(lines, "\n"+sep)
	}

	lines = append(lines, fmt.Sprintf("\nGenerated in %dms (%s)",
		p.TotalTimeMs, p.Timestamp.Format("2006-01-02 15:04:05")))
	lines = append(lines, rule)

	return strings.Join(lines, "\n")
}

// FormatHTML renders a panel response as an HTML fragment for
// embedding in a page.
func (a *Aggregator) FormatHTML(p *PanelResponse) string {
	var lines []string

	lines = append(lines, `<div class="debate-panel">`)
	lines = append(lines, `<div class="header">`)
	lines = append(lines, "<h1>Virtual Debate Panel</h1>")
	lines = append(lines, fmt.Sprintf(`<p class="query"><strong>Query:</strong> %s</p>`, p.Query))
	lines = append(lines, fmt.Sprintf(`<p class="meta"><strong>Panel:</strong> %d authors (%s selection)</p>`, p.AuthorCount(), p.SelectionMethod))
	lines = append(lines, "</div>")

	lines = append(lines, `<div class="responses">`)
	for i, resp := range p.Authors {
		lines = append(lines, fmt.Sprintf(`<div class="author-response" data-author="%s">`, resp.AuthorID))
		lines = append(lines, fmt.Sprintf("<h2>%d. %s</h2>", i+1, resp.AuthorName))
		lines = append(lines, fmt.Sprintf(`<p class="relevance">Relevance: <span class="score">%.2f</span></p>`, resp.RelevanceScore))

		for _, para := range strings.Split(resp.Text, "\n\n") {
			para = strings.TrimSpace(para)
			if para != "" {
				lines = append(lines, fmt.Sprintf("<p>%s</p>", para))
			}
		}

		lines = append(lines, "</div>")
	}
	lines = append(lines, "</div>")

	lines = append(lines, `<div class="footer">`)
	lines = append(lines, fmt.Sprintf(`<p class="meta">Generated in %dms (%s)</p>`,
		p.TotalTimeMs, p.Timestamp.Format("2006-01-02 15:04:05")))
	lines = append(lines, "</div>")
	lines = append(lines, "</div>")

	return strings.Join(lines, "\n")
}

// FormatComparisonTable renders a markdown table of author positions,
// using each response's first sentence as the key position.
func (a *Aggregator) FormatComparisonTable(p *PanelResponse) string {
	var lines []string

	lines = append(lines, "## Author Comparison\n")
	lines = append(lines, "| Author | Relevance | Key Position |")
	lines = append(lines, "|--------|-----------|--------------|")

	for _, resp := range p.Authors {
		firstSentence, _, _ := strings.Cut(resp.Text, ".")
		if len(firstSentence) > 80 {
			firstSentence = firstSentence[:77] + "..."
		}
		lines = append(lines, fmt.Sprintf("| %s | %.2f | %s |",
			resp.AuthorName, resp.RelevanceScore, firstSentence))
	}

	return strings.Join(lines, "\n")
}

// FormatSessionMarkdown renders a full debate session as markdown,
// one section per round.
func (a *Aggregator) FormatSessionMarkdown(s *Session) string {
	var lines []string

	lines = append(lines, "# Author Debate\n")
	lines = append(lines, fmt.Sprintf("**Query:** %s\n", s.Query))
	lines = append(lines, fmt.Sprintf("**Rounds:** %d (%s selection)\n", len(s.Rounds), s.SelectionMethod))

	for _, round := range s.Rounds {
		lines = append(lines, fmt.Sprintf("## Round %d (%s)\n", round.Number, round.Type))
		for _, resp := range round.Responses {
			lines = append(lines, fmt.Sprintf("### %s\n", resp.AuthorName))
			lines = append(lines, resp.Text)
			lines = append(lines, "")
		}
	}

	lines = append(lines, fmt.Sprintf("*Generated in %dms*", s.TotalTimeMs))
	return strings.Join(lines, "\n")
}
