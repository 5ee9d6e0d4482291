package notes

import "strings"

// Rule assigns Category to pull requests carrying any of Labels.
// Labels are compared in lowercase.
type Rule struct {
	Labels   []string
	Category Category
}

// DefaultRules is evaluated top to bottom; the first matching rule wins.
var DefaultRules = []Rule{
	{Labels: []string{"feature", "enhancement"}, Category: Features},
	{Labels: []string{"bug", "fix"}, Category: BugFixes},
	{Labels: []string{"documentation"}, Category: Documentation},
}

// Categorize partitions prs using DefaultRules. Arrival order is kept
// within each category.
func Categorize(prs []PullRequest) *Result {
	return CategorizeWith(DefaultRules, prs)
}

// CategorizeWith partitions prs using the given rule table
func CategorizeWith(rules []Rule, prs []PullRequest) *Result {
	res := NewResult()
	for _, pr := range prs {
		res.add(classify(rules, pr), pr)
	}
	return res
}

// Classify returns the category DefaultRules assign to pr
func Classify(pr PullRequest) Category {
	return classify(DefaultRules, pr)
}

func classify(rules []Rule, pr PullRequest) Category {
	labels := make(map[string]struct{}, len(pr.Labels))
	for _, l := range pr.Labels {
		labels[strings.ToLower(l)] = struct{}{}
	}

	for _, rule := range rules {
		for _, l := range rule.Labels {
			if _, ok := labels[l]; ok {
				return rule.Category
			}
		}
	}
	return Other
}
