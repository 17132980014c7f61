// Package games serves the published game catalog: listing, metadata,
// client-package download and player reviews. The catalog itself is written
// by the developer upload service; this side only reads it.
package games

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gamehall/gamehall/internal/docstore"
	"github.com/gamehall/gamehall/internal/model"
)

// Service reads the games and reviews collections
type Service struct {
	store  docstore.Collections
	logger *slog.Logger

	// mu serializes review writes, which are whole-collection overwrites
	mu sync.Mutex
}

// New creates a games service
func New(store docstore.Collections, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With(slog.String("component", "games")),
	}
}

// List returns the whole game catalog
func (s *Service) List(ctx context.Context) (map[string]*model.Game, error) {
	games := make(map[string]*model.Game)
	if err := s.store.Load(ctx, docstore.CollectionGames, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Get returns one game's metadata
func (s *Service) Get(ctx context.Context, gameID string) (*model.Game, error) {
	games, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	game, ok := games[gameID]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

// Download reads the installed files of a game's directory into a
// filename -> contents map for the client to write out locally. Only
// regular files at the top level are included.
func (s *Service) Download(ctx context.Context, gameID string) (map[string]string, error) {
	game, err := s.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	files := make(map[string]string)
	entries, err := os.ReadDir(game.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return files, nil
		}
		return nil, err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(game.Path, entry.Name()))
		if err != nil {
			return nil, err
		}
		files[entry.Name()] = string(content)
	}
	return files, nil
}

// Reviews returns the review list for a game; an unreviewed game yields an
// empty list, not an error.
func (s *Service) Reviews(ctx context.Context, gameID string) ([]model.Review, error) {
	reviews := make(map[string][]model.Review)
	if err := s.store.Load(ctx, docstore.CollectionReviews, &reviews); err != nil {
		return nil, err
	}
	list := reviews[gameID]
	if list == nil {
		list = []model.Review{}
	}
	return list, nil
}

// AddReview appends a player's review to a game's list
func (s *Service) AddReview(ctx context.Context, gameID, reviewer string, score int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := make(map[string][]model.Review)
	if err := s.store.Load(ctx, docstore.CollectionReviews, &reviews); err != nil {
		return err
	}
	reviews[gameID] = append(reviews[gameID], model.Review{
		Reviewer: reviewer,
		Score:    score,
		Comment:  comment,
	})
	if err := s.store.UpdateAll(ctx, docstore.CollectionReviews, reviews); err != nil {
		return err
	}

	s.logger.Info("review added",
		slog.String("game", gameID),
		slog.String("reviewer", reviewer),
	)
	return nil
}
