package telegram

import (
	"context"

	"github.com/yourorg/relnotes/internal/db"
)

// StoreAdapter adapts db.Store to telegram.Store interface
type StoreAdapter struct {
	store *db.Store
}

// NewStoreAdapter creates a new store adapter
func NewStoreAdapter(store *db.Store) Store {
	return &StoreAdapter{store: store}
}

// AddRepository implements Store.AddRepository
func (a *StoreAdapter) AddRepository(ctx context.Context, owner, name string, trackPrereleases bool) error {
	return a.store.AddRepository(ctx, owner, name, trackPrereleases)
}

// RemoveRepository implements Store.RemoveRepository
func (a *StoreAdapter) RemoveRepository(ctx context.Context, owner, name string) error {
	return a.store.RemoveRepository(ctx, owner, name)
}

// ListRepositories implements Store.ListRepositories
func (a *StoreAdapter) ListRepositories(ctx context.Context) ([]Repository, error) {
	dbRepos, err := a.store.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	repos := make([]Repository, 0, len(dbRepos))
	for _, r := range dbRepos {
		repos = append(repos, Repository{
			Owner:            r.Owner,
			Name:             r.Name,
			TrackPrereleases: r.TrackPrereleases,
		})
	}
	return repos, nil
}

// AddChat implements Store.AddChat
func (a *StoreAdapter) AddChat(ctx context.Context, chatID int64, title string) error {
	return a.store.AddChat(ctx, chatID, title)
}

// RemoveChat implements Store.RemoveChat
func (a *StoreAdapter) RemoveChat(ctx context.Context, chatID int64) error {
	return a.store.RemoveChat(ctx, chatID)
}

// ListRuns implements Store.ListRuns
func (a *StoreAdapter) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	dbRuns, err := a.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	runs := make([]Run, 0, len(dbRuns))
	for _, r := range dbRuns {
		runs = append(runs, Run{
			Repo:      r.Owner + "/" + r.Repo,
			EndTag:    r.EndTag,
			StartTag:  r.StartTag,
			Total:     r.Total(),
			CreatedAt: r.CreatedAt,
		})
	}
	return runs, nil
}
