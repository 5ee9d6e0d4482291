package compose

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yourorg/relnotes/internal/notes"
)

// Options for composing messages
type Options struct {
	MaxItemsPerCategory int
	MaxTitleChars       int
	TimeZone            string
}

// Input data for composing a message
type Input struct {
	RepoFull  string
	Tag       string
	StartTag  string
	URL       string
	Result    *notes.Result
	Published time.Time
	Advisor   string // optional LLM summary
}

// BuildHTML creates an HTML-formatted release notes announcement for Telegram
func BuildHTML(in Input, opt Options) string {
	loc, _ := time.LoadLocation(opt.TimeZone)
	if loc == nil {
		loc = time.UTC
	}

	var sb strings.Builder
	sb.WriteString("🔥 <b>")
	sb.WriteString(html.EscapeString(in.RepoFull))
	sb.WriteString("</b> ")
	if in.URL != "" {
		sb.WriteString(`<a href="` + html.EscapeString(in.URL) + `">` + html.EscapeString(in.Tag) + "</a>")
	} else {
		sb.WriteString("<code>" + html.EscapeString(in.Tag) + "</code>")
	}
	if in.StartTag != "" {
		sb.WriteString(" <i>since " + html.EscapeString(in.StartTag) + "</i>")
	}
	sb.WriteString("\n")

	if !in.Published.IsZero() {
		sb.WriteString("📅 " + in.Published.In(loc).Format("2006-01-02 15:04") + "\n")
	}

	if in.Result == nil || in.Result.Empty() {
		sb.WriteString("\n<i>" + html.EscapeString("No pull requests found for this release period.") + "</i>\n")
	} else {
		for _, c := range notes.Categories {
			prs := in.Result.Get(c)
			if len(prs) == 0 {
				continue
			}
			sb.WriteString(fmt.Sprintf("\n<b>%s</b> (%d)\n", html.EscapeString(c.Title()), len(prs)))

			shown := len(prs)
			if opt.MaxItemsPerCategory > 0 && shown > opt.MaxItemsPerCategory {
				shown = opt.MaxItemsPerCategory
			}
			for _, pr := range prs[:shown] {
				sb.WriteString("▪️ " + itemHTML(pr, opt.MaxTitleChars) + "\n")
			}
			if rest := len(prs) - shown; rest > 0 {
				sb.WriteString(fmt.Sprintf("<i>... and %d more</i>\n", rest))
			}
		}
	}

	if strings.TrimSpace(in.Advisor) != "" {
		sb.WriteString("\n💡 " + html.EscapeString(strings.TrimSpace(in.Advisor)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func itemHTML(pr notes.PullRequest, maxChars int) string {
	title := truncate(pr.Title, maxChars)
	ref := fmt.Sprintf("#%d", pr.Number)
	if pr.URL != "" {
		ref = `<a href="` + html.EscapeString(pr.URL) + `">` + ref + "</a>"
	}
	return html.EscapeString(title) + " (" + ref + ")"
}

// truncate shortens s to at most max runes, marking the cut with an ellipsis
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
