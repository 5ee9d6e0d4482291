// Package notes selects the pull requests merged between two releases and
// groups them by category.
//
// The engine talks to the hosting service only through Source and issues
// its queries one after another: end tag, start tag or release listing,
// then the pull request listing.
package notes

import "context"

// Selection is the outcome of one selection run
type Selection struct {
	Window Window
	Result *Result
}

// SelectAndCategorize resolves the release window, selects the pull
// requests merged inside it and categorizes them. It either returns a
// complete Selection or an error, never both.
func SelectAndCategorize(ctx context.Context, src Source, endTag, startTag string) (*Selection, error) {
	w, err := ResolveWindow(ctx, src, endTag, startTag)
	if err != nil {
		return nil, err
	}

	candidates, err := src.ListClosedPullRequests(ctx, PageSize)
	if err != nil {
		return nil, &CollaboratorError{Op: "list closed pull requests", Err: err}
	}

	return &Selection{
		Window: w,
		Result: Categorize(Select(candidates, w)),
	}, nil
}
