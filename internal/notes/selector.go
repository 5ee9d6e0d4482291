package notes

// Select returns the pull requests merged inside w, in the order given.
// Unmerged pull requests are never selected.
func Select(prs []PullRequest, w Window) []PullRequest {
	selected := make([]PullRequest, 0, len(prs))
	for _, pr := range prs {
		if !pr.Merged() {
			continue
		}
		if !w.Contains(*pr.MergedAt) {
			continue
		}
		selected = append(selected, pr)
	}
	return selected
}
