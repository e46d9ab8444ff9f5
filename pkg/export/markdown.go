package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/smantzavinos/tally/pkg/model"
)

// escapeCell prepares text for a markdown table cell.
func escapeCell(text string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"\n", " ",
		"\r", "",
	)
	return strings.TrimSpace(replacer.Replace(text))
}

// bar draws a fixed-width text bar for share in [0, 1].
func bar(share float64, width int) string {
	filled := int(share*float64(width) + 0.5)
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// GenerateMarkdown creates a markdown report of the counters, in list order.
func GenerateMarkdown(counters []model.Counter, title string) (string, error) {
	var sb strings.Builder
	sum := model.Summarize(counters)

	// Header
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Counters** | %d |\n", sum.Count))
	sb.WriteString(fmt.Sprintf("| Total | %s |\n", humanize.Comma(int64(sum.Total))))
	sb.WriteString(fmt.Sprintf("| Mean | %.2f |\n", sum.Mean))
	sb.WriteString(fmt.Sprintf("| Max | %s |\n\n", humanize.Comma(int64(sum.Max))))

	// Counters
	sb.WriteString("## Counters\n\n")
	if len(counters) == 0 {
		sb.WriteString("*No counters.*\n")
		return sb.String(), nil
	}
	sb.WriteString("| # | Title | Value | Style | |\n|---|-------|------:|-------|---|\n")
	for i, c := range counters {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | `%s` |\n",
			i+1,
			escapeCell(c.Title),
			humanize.Comma(int64(c.Value)),
			c.Style.Name(),
			bar(sum.Share(c.Value), 10),
		))
	}
	return sb.String(), nil
}

// SaveMarkdownToFile writes the generated markdown to a file.
func SaveMarkdownToFile(counters []model.Counter, filename string) error {
	content, err := GenerateMarkdown(counters, "Tally Export")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}
