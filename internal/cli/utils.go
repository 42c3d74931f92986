// Package cli provides output helpers for the pathshala command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pathshala/pathshala/internal/models"
	"github.com/pathshala/pathshala/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat resolves a -format flag value. Anything but "json" is text.
func ParseFormat(s string) OutputFormat {
	if strings.EqualFold(strings.TrimSpace(s), string(OutputJSON)) {
		return OutputJSON
	}
	return OutputText
}

const snippetWords = 30

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	writeSearchResultsText(w, response)
	return nil
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms (%d terms)\n\n", response.Total, response.QueryTime, len(response.Terms))
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
	if len(response.Results) == 0 && len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(response.Suggestions, ", "))
	}
}

func writeOneResult(w io.Writer, result *models.ScoredRecord) {
	rec := result.Record
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "[%s] Rank: %d | Score: %d\n", rec.Category().Label(), result.Rank, result.Score)
	fmt.Fprintf(w, "ID: %s\n", rec.Meta().ID)
	fmt.Fprintf(w, "Title: %s\n", utils.Truncate(models.Title(rec), 120))
	fields := rec.SearchFields()
	if subject := fields["subject"]; subject != "" {
		fmt.Fprintf(w, "Subject: %s\n", subject)
	}
	if body := snippet(rec); body != "" {
		fmt.Fprintf(w, "\n%s\n", TruncateWords(body, snippetWords))
	}
	fmt.Fprintln(w)
}

func snippet(rec models.Record) string {
	switch r := rec.(type) {
	case *models.Textbook:
		return r.Description
	case *models.Question:
		if r.Answer != "" {
			return "Answer: " + r.Answer
		}
		return r.Explanation
	case *models.Note:
		return r.Content
	}
	return ""
}

// TermsReport is the output of the expand command.
type TermsReport struct {
	Query       string   `json:"query"`
	Terms       []string `json:"terms"`
	Entries     []string `json:"entries,omitempty"`
	Rules       []string `json:"rules,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// WriteTerms writes an expansion report to w in the given format.
func WriteTerms(w io.Writer, report *TermsReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "Query: %s\n", report.Query)
	if len(report.Entries) > 0 {
		fmt.Fprintf(w, "Vocabulary: %s\n", strings.Join(report.Entries, ", "))
	}
	if len(report.Rules) > 0 {
		fmt.Fprintf(w, "Rules: %s\n", strings.Join(report.Rules, ", "))
	}
	fmt.Fprintf(w, "Terms (%d):\n", len(report.Terms))
	for i, term := range report.Terms {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, term)
	}
	if len(report.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s\n", strings.Join(report.Suggestions, ", "))
	}
	return nil
}

// WriteStatus writes per-category record counts.
func WriteStatus(w io.Writer, counts map[models.Category]int64, diskBytes int64, format OutputFormat) error {
	var total int64
	for _, n := range counts {
		total += n
	}
	if format == OutputJSON {
		return writeJSON(w, map[string]any{
			"records":          counts,
			"total_records":    total,
			"disk_usage_bytes": diskBytes,
		})
	}
	for _, c := range models.Categories() {
		fmt.Fprintf(w, "%-12s %d\n", c.Label()+":", counts[c])
	}
	fmt.Fprintf(w, "%-12s %d\n", "Total:", total)
	if diskBytes > 0 {
		fmt.Fprintf(w, "%-12s %s\n", "Disk:", FormatBytes(diskBytes))
	}
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
