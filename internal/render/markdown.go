// Package render turns a categorized selection into Markdown, email and
// PDF release notes and writes them to an output directory.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/relnotes/internal/notes"
)

// NoChangesNotice is printed when the release window holds no pull requests
const NoChangesNotice = "No pull requests found for this release period."

// Notes is everything needed to render the notes of one release
type Notes struct {
	Product     string
	EndTag      string
	StartTag    string // empty when the window was bounded by the previous release
	Result      *notes.Result
	Highlights  string // optional advisor summary
	GeneratedAt time.Time
}

// Markdown renders the release notes as a Markdown document
func Markdown(n Notes) string {
	var sb strings.Builder

	sb.WriteString("# Release Notes - " + n.EndTag)
	if n.StartTag != "" {
		sb.WriteString(" (Changes since " + n.StartTag + ")")
	}
	sb.WriteString("\n\n")

	if h := strings.TrimSpace(n.Highlights); h != "" {
		sb.WriteString("## Highlights\n\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}

	for _, c := range notes.Categories {
		prs := n.Result.Get(c)
		if len(prs) == 0 {
			continue
		}
		sb.WriteString("## " + c.Title() + "\n\n")
		for _, pr := range prs {
			sb.WriteString(itemLine(pr) + "\n")
		}
		sb.WriteString("\n")
	}

	if n.Result.Empty() {
		sb.WriteString("> " + NoChangesNotice + "\n")
	}

	return sb.String()
}

// EmailBody renders the plain-text list substituted for {release_notes}
func EmailBody(res *notes.Result) string {
	var sb strings.Builder

	for _, c := range notes.Categories {
		prs := res.Get(c)
		if len(prs) == 0 {
			continue
		}
		sb.WriteString("\n" + c.Title() + ":\n")
		for _, pr := range prs {
			sb.WriteString(itemLine(pr) + "\n")
		}
		sb.WriteString("\n")
	}

	if res.Empty() {
		sb.WriteString("> " + NoChangesNotice + "\n")
	}

	return sb.String()
}

func itemLine(pr notes.PullRequest) string {
	return fmt.Sprintf("- %s (#%d)", pr.Title, pr.Number)
}
