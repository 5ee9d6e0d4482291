package notes

import "time"

// ReleaseTag identifies a published release
type ReleaseTag struct {
	Name      string
	CreatedAt time.Time
}

// PullRequest is a closed pull request as seen by the selection engine
type PullRequest struct {
	Number   int
	Title    string
	MergedAt *time.Time // nil when the pull request was closed without merging
	Author   string
	Labels   []string
	Body     string
	URL      string
}

// Merged reports whether the pull request carries a merge timestamp
func (p PullRequest) Merged() bool {
	return p.MergedAt != nil
}

// Category is one of the fixed buckets pull requests are grouped into
type Category string

const (
	Features      Category = "Features"
	BugFixes      Category = "BugFixes"
	Documentation Category = "Documentation"
	Other         Category = "Other"
)

// Categories lists every category in presentation order
var Categories = []Category{Features, BugFixes, Documentation, Other}

// Title returns the heading used when rendering the category
func (c Category) Title() string {
	if c == BugFixes {
		return "Bug Fixes"
	}
	return string(c)
}

// Window is the half-open interval (Start, End] bounding a release.
// A nil Start means the window is unbounded below.
type Window struct {
	Start *time.Time
	End   time.Time
}

// Contains reports whether t lies in (Start, End]
func (w Window) Contains(t time.Time) bool {
	if t.After(w.End) {
		return false
	}
	if w.Start != nil && !t.After(*w.Start) {
		return false
	}
	return true
}

// Result maps every category to the pull requests assigned to it.
// All four categories are always present.
type Result struct {
	byCategory map[Category][]PullRequest
}

// NewResult returns a Result with every category present and empty
func NewResult() *Result {
	r := &Result{byCategory: make(map[Category][]PullRequest, len(Categories))}
	for _, c := range Categories {
		r.byCategory[c] = []PullRequest{}
	}
	return r
}

func (r *Result) add(c Category, pr PullRequest) {
	r.byCategory[c] = append(r.byCategory[c], pr)
}

// Get returns the pull requests of a category in arrival order
func (r *Result) Get(c Category) []PullRequest {
	return r.byCategory[c]
}

// Total returns the number of pull requests across all categories
func (r *Result) Total() int {
	total := 0
	for _, prs := range r.byCategory {
		total += len(prs)
	}
	return total
}

// Empty reports whether no pull request was selected
func (r *Result) Empty() bool {
	return r.Total() == 0
}

// Counts returns the number of pull requests per category
func (r *Result) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = len(r.byCategory[c])
	}
	return counts
}
