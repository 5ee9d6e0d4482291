package notes

import (
	"context"
	"fmt"
)

// ResolveWindow determines the window (start, end] of the release named by
// endTag. When startTag is empty the previous release in the listing
// bounds the window; without one the window is unbounded below.
func ResolveWindow(ctx context.Context, src Source, endTag, startTag string) (Window, error) {
	end, err := lookupTag(ctx, src, endTag, RoleEnd)
	if err != nil {
		return Window{}, err
	}

	w := Window{End: end.CreatedAt}

	if startTag != "" {
		start, err := lookupTag(ctx, src, startTag, RoleStart)
		if err != nil {
			return Window{}, err
		}
		startDate := start.CreatedAt
		w.Start = &startDate
		return w, nil
	}

	prev, err := previousRelease(ctx, src, end.Name)
	if err != nil {
		return Window{}, err
	}
	if prev != nil {
		startDate := prev.CreatedAt
		w.Start = &startDate
	}
	return w, nil
}

func lookupTag(ctx context.Context, src Source, tag, role string) (*ReleaseTag, error) {
	release, err := src.GetReleaseByTag(ctx, tag)
	if err != nil {
		return nil, &CollaboratorError{Op: fmt.Sprintf("get release by tag %q", tag), Err: err}
	}
	if release == nil {
		return nil, &TagNotFoundError{Tag: tag, Role: role}
	}
	return release, nil
}

// previousRelease returns the release listed right after tag, or nil when
// tag is missing from the listing or is its oldest entry.
func previousRelease(ctx context.Context, src Source, tag string) (*ReleaseTag, error) {
	releases, err := src.ListReleases(ctx, PageSize)
	if err != nil {
		return nil, &CollaboratorError{Op: "list releases", Err: err}
	}

	for i, r := range releases {
		if r.Name != tag {
			continue
		}
		if i+1 >= len(releases) {
			return nil, nil
		}
		prev := releases[i+1]
		return &prev, nil
	}
	return nil, nil
}
