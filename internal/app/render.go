package app

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Render formats a report in the requested output format.
func Render(report Report, format OutputFormat) (string, error) {
	switch format {
	case JSON:
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		return string(data) + "\n", nil
	case Text:
		return renderText(report), nil
	default:
		return renderMarkdown(report), nil
	}
}

func renderMarkdown(r Report) string {
	var b strings.Builder

	if r.Query != "" {
		fmt.Fprintf(&b, "# Clusters for %q\n\n", r.Query)
	} else {
		b.WriteString("# Clusters\n\n")
	}
	fmt.Fprintf(&b, "%s · %s · %s · %s\n", plural(r.Documents, "document"), plural(len(r.Clusters), "cluster"), r.Algorithm, r.Vectorizer)

	for i, c := range r.Clusters {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, c.Name)
		fmt.Fprintf(&b, "%s · cohesion %.2f\n", plural(c.Size, "document"), c.Cohesion)
		if len(c.Keywords) > 0 {
			fmt.Fprintf(&b, "\n**Keywords:** %s\n", strings.Join(c.Keywords, ", "))
		}
		if len(c.Representatives) > 0 {
			b.WriteString("\n")
			for _, d := range c.Representatives {
				fmt.Fprintf(&b, "- %s\n", markdownSummary(d))
			}
		}
	}

	if len(r.Unclustered) > 0 {
		fmt.Fprintf(&b, "\n## Unclustered\n\n%s\n", strings.Join(quoteAll(r.Unclustered), ", "))
	}

	if len(r.Topics) > 0 {
		b.WriteString("\n## Topics\n\n")
		for _, t := range r.Topics {
			fmt.Fprintf(&b, "- **%s**: %s (weight %.2f)\n", t.Name, strings.Join(t.Keywords, ", "), t.Weight)
		}
	}

	if s := r.Statistics; s.Count > 0 {
		b.WriteString("\n## Summary\n\n")
		fmt.Fprintf(&b, "- Average size: %.1f (min %d, max %d)\n", s.AvgSize, s.MinSize, s.MaxSize)
		fmt.Fprintf(&b, "- Average cohesion: %.2f\n", s.AvgCohesion)
		if len(s.TopKeywords) > 0 {
			fmt.Fprintf(&b, "- Top keywords: %s\n", strings.Join(s.TopKeywords, ", "))
		}
	}

	return b.String()
}

func renderText(r Report) string {
	var b strings.Builder

	if r.Query != "" {
		fmt.Fprintf(&b, "Clusters for %q\n", r.Query)
	} else {
		b.WriteString("Clusters\n")
	}
	fmt.Fprintf(&b, "%s, %s (%s, %s)\n", plural(r.Documents, "document"), plural(len(r.Clusters), "cluster"), r.Algorithm, r.Vectorizer)

	for i, c := range r.Clusters {
		fmt.Fprintf(&b, "\n%d. %s [%s, cohesion %.2f]\n", i+1, c.Name, plural(c.Size, "document"), c.Cohesion)
		if len(c.Keywords) > 0 {
			fmt.Fprintf(&b, "   Keywords: %s\n", strings.Join(c.Keywords, ", "))
		}
		for _, d := range c.Representatives {
			label := d.ID
			if d.Title != "" {
				label = fmt.Sprintf("%s (%s)", d.Title, d.ID)
			}
			fmt.Fprintf(&b, "   - %s\n", label)
			if d.Snippet != "" {
				fmt.Fprintf(&b, "     %s\n", d.Snippet)
			}
		}
	}

	if len(r.Unclustered) > 0 {
		fmt.Fprintf(&b, "\nUnclustered: %s\n", strings.Join(r.Unclustered, ", "))
	}

	if len(r.Topics) > 0 {
		b.WriteString("\nTopics\n")
		for _, t := range r.Topics {
			fmt.Fprintf(&b, "   %s: %s (weight %.2f)\n", t.Name, strings.Join(t.Keywords, ", "), t.Weight)
		}
	}

	if s := r.Statistics; s.Count > 0 {
		fmt.Fprintf(&b, "\nAverage size %.1f (min %d, max %d), average cohesion %.2f\n", s.AvgSize, s.MinSize, s.MaxSize, s.AvgCohesion)
		if len(s.TopKeywords) > 0 {
			fmt.Fprintf(&b, "Top keywords: %s\n", strings.Join(s.TopKeywords, ", "))
		}
	}

	return b.String()
}

func markdownSummary(d DocumentSummary) string {
	var line string
	if d.Title != "" {
		line = fmt.Sprintf("**%s** (`%s`)", d.Title, d.ID)
	} else {
		line = fmt.Sprintf("`%s`", d.ID)
	}
	if d.Snippet != "" {
		line += ": " + d.Snippet
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func quoteAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = "`" + id + "`"
	}
	return out
}
