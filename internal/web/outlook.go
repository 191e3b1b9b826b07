package web

import (
	"fmt"
	"strings"

	"github.com/hpungsan/wxdash/internal/dashboard"
)

// composeOutlook summarizes the dashboard as markdown.
func composeOutlook(district string, r dashboard.Readouts, temps dashboard.Series) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### Outlook for %s\n\n", escapeMarkdown(district))
	fmt.Fprintf(&b, "**%s**, %s (feels like %s). Wind %s, humidity %s, rain chance %s.\n",
		r.Condition, r.Temperature, r.FeelsLike, r.Wind, r.Humidity, r.Rain)

	if len(temps.Values) > 0 {
		b.WriteString("\nNext hours:\n\n")
		for i, v := range temps.Values {
			fmt.Fprintf(&b, "- %s: %d °C\n", temps.Labels[i], dashboard.Round(v))
		}
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "#", `\#`, "<", "&lt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
