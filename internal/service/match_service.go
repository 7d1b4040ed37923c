// Package service implements the application services: item reporting,
// matching, and authentication.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/trovehq/trove/internal/embeddings"
	"github.com/trovehq/trove/internal/matching"
	"github.com/trovehq/trove/internal/models"
	"github.com/trovehq/trove/internal/observability"
	"github.com/trovehq/trove/internal/repository"
	"github.com/trovehq/trove/pkg/cache"
)

// cacheNameLostEmbeddings labels the lost-item embedding cache in metrics.
const cacheNameLostEmbeddings = "lost_embeddings"

// Visual matching parameters. These are part of the matching algorithm, not
// deployment configuration.
const (
	// visualTopK is how many nearest neighbors are pulled per lost item.
	visualTopK = 5
	// minVisualSimilarity is the minimum cosine similarity (1 - distance)
	// for a neighbor to count as a visual match.
	minVisualSimilarity = 0.5
	// visualBoost is the score contributed by a visual match, standalone or
	// merged into an existing text match.
	visualBoost = 5
)

// LostItemsForMatching provides the lost item reads needed by matching.
type LostItemsForMatching interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.LostItem, error)
}

// FoundItemsForMatching provides the found item reads needed by matching.
type FoundItemsForMatching interface {
	ListCandidates(ctx context.Context, filter models.FoundItemFilter) ([]*models.FoundItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.FoundItem, error)
}

// VectorIndexForMatching provides the vector index reads needed by matching.
type VectorIndexForMatching interface {
	GetByItem(ctx context.Context, kind repository.EmbeddingKind, itemID uuid.UUID) ([]float32, error)
	Nearest(ctx context.Context, kind repository.EmbeddingKind, queryEmbedding []float32, category string, k int) ([]models.NeighborMatch, error)
}

// MatchService computes the notification feed for a user: plausible
// (lost, found) pairings from attribute similarity and visual similarity,
// merged and deduplicated per pair.
type MatchService struct {
	lostItems       LostItemsForMatching
	foundItems      FoundItemsForMatching
	index           VectorIndexForMatching
	embeddingClient embeddings.Client
	embeddingCache  *cache.LoaderCache[uuid.UUID, []float32]
	cacheMetrics    observability.CacheMetrics
	logger          *slog.Logger
}

// MatchServiceParams configures MatchService. EmbeddingCache may be nil (no
// caching); CacheMetrics may be nil (no hit/miss recording).
type MatchServiceParams struct {
	LostItems       LostItemsForMatching
	FoundItems      FoundItemsForMatching
	Index           VectorIndexForMatching
	EmbeddingClient embeddings.Client
	EmbeddingCache  *cache.LoaderCache[uuid.UUID, []float32]
	CacheMetrics    observability.CacheMetrics
	Logger          *slog.Logger
}

// NewMatchService creates a MatchService.
func NewMatchService(p MatchServiceParams) *MatchService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &MatchService{
		lostItems:       p.LostItems,
		foundItems:      p.FoundItems,
		index:           p.Index,
		embeddingClient: p.EmbeddingClient,
		embeddingCache:  p.EmbeddingCache,
		cacheMetrics:    p.CacheMetrics,
		logger:          logger,
	}
}

// Notifications returns the match candidates for every lost item the user has
// reported, in insertion order: per lost item, text matches first, then visual
// matches merged in. Only the initial lost-item fetch is fatal; faults in one
// lost item's processing are logged and folded into empty results so they
// never abort the rest of the batch.
func (s *MatchService) Notifications(ctx context.Context, userID uuid.UUID) ([]models.MatchCandidate, error) {
	lostItems, err := s.lostItems.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list lost items: %w", err)
	}

	feed := newCandidateFeed()

	for _, lost := range lostItems {
		if err := s.textMatches(ctx, lost, feed); err != nil {
			s.logger.Error("matching: text pass failed", "lost_item_id", lost.ID, "error", err)
		}

		visual, err := s.visualMatches(ctx, lost)
		if err != nil {
			s.logger.Error("matching: visual pass failed", "lost_item_id", lost.ID, "error", err)

			continue
		}

		for _, vm := range visual {
			feed.mergeVisual(lost, vm.found, vm.similarity)
		}
	}

	return feed.candidates(), nil
}

// textMatches scores every found item passing the category+date hard filter
// and adds those at or above the attribute threshold to the feed.
func (s *MatchService) textMatches(ctx context.Context, lost *models.LostItem, feed *candidateFeed) error {
	candidates, err := s.foundItems.ListCandidates(ctx, models.FoundItemFilter{
		Category:     lost.Category,
		MinDateFound: lost.DateLost,
	})
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}

	for _, found := range candidates {
		score := matching.Score(lost, found)
		if score < matching.MinScore {
			continue
		}

		feed.addText(lost, found, score)
	}

	return nil
}

// visualMatch pairs a resolved found item with its cosine similarity.
type visualMatch struct {
	found      *models.FoundItem
	similarity float64
}

// visualMatches returns found items visually similar to the lost item's first
// image. A lost item without an image yields no matches. Neighbors below the
// similarity threshold are dropped, and the date hard filter is re-checked
// here because the vector index knows nothing about dates.
func (s *MatchService) visualMatches(ctx context.Context, lost *models.LostItem) ([]visualMatch, error) {
	if lost.FirstImage() == "" {
		return nil, nil
	}

	queryEmbedding, err := s.lostEmbedding(ctx, lost)
	if err != nil {
		return nil, fmt.Errorf("lost item embedding: %w", err)
	}

	neighbors, err := s.index.Nearest(ctx, repository.EmbeddingKindFound, queryEmbedding, lost.Category, visualTopK)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbors: %w", err)
	}

	var matches []visualMatch

	for _, n := range neighbors {
		if n.Similarity < minVisualSimilarity {
			continue
		}

		found, err := s.foundItems.GetByID(ctx, n.ItemID)
		if err != nil {
			if errors.Is(err, repository.ErrFoundItemNotFound) {
				// Indexed item no longer exists in the record store; skip it.
				s.logger.Debug("matching: indexed found item missing", "found_item_id", n.ItemID)

				continue
			}

			return nil, fmt.Errorf("resolve found item: %w", err)
		}

		if found.DateFound.Before(lost.DateLost) {
			continue
		}

		matches = append(matches, visualMatch{found: found, similarity: n.Similarity})
	}

	return matches, nil
}

// lostEmbedding returns the lost item's embedding: the stored one from the
// vector index when present, otherwise computed fresh from the first image.
// When a cache is configured, results are cached per item with concurrent
// computes for the same item collapsed into one.
func (s *MatchService) lostEmbedding(ctx context.Context, lost *models.LostItem) ([]float32, error) {
	load := func(ctx context.Context, id uuid.UUID) ([]float32, error) {
		vec, err := s.index.GetByItem(ctx, repository.EmbeddingKindLost, id)
		if err == nil {
			return vec, nil
		}

		if !errors.Is(err, repository.ErrEmbeddingNotFound) {
			return nil, fmt.Errorf("stored embedding: %w", err)
		}

		vec, err = s.embeddingClient.EmbedImage(ctx, embeddings.RefFromString(lost.FirstImage()))
		if err != nil {
			return nil, fmt.Errorf("compute embedding: %w", err)
		}

		return vec, nil
	}

	if s.embeddingCache == nil {
		return load(ctx, lost.ID)
	}

	vec, hit, err := s.embeddingCache.GetWithStats(ctx, lost.ID, load)

	if s.cacheMetrics != nil && err == nil {
		if hit {
			s.cacheMetrics.RecordHit(ctx, cacheNameLostEmbeddings)
		} else {
			s.cacheMetrics.RecordMiss(ctx, cacheNameLostEmbeddings)
		}
	}

	return vec, err
}

// candidateFeed accumulates match candidates with one entry per (lost, found)
// pair, preserving insertion order for the final sequence.
type candidateFeed struct {
	byPair map[string]*models.MatchCandidate
	order  []string
}

func newCandidateFeed() *candidateFeed {
	return &candidateFeed{byPair: make(map[string]*models.MatchCandidate)}
}

// addText records a text match for the pair unless one already exists.
func (f *candidateFeed) addText(lost *models.LostItem, found *models.FoundItem, score int) {
	c := &models.MatchCandidate{
		Type:      "match",
		Method:    models.MatchMethodText,
		LostItem:  lost,
		FoundItem: found,
		Score:     score,
	}

	key := c.PairKey()
	if _, ok := f.byPair[key]; ok {
		return
	}

	f.byPair[key] = c
	f.order = append(f.order, key)
}

// mergeVisual folds a visual match into the feed: an existing text candidate
// for the pair becomes hybrid with the visual boost added to its score;
// otherwise a new visual candidate is appended.
func (f *candidateFeed) mergeVisual(lost *models.LostItem, found *models.FoundItem, similarity float64) {
	c := &models.MatchCandidate{
		Type:      "match",
		Method:    models.MatchMethodVisual,
		LostItem:  lost,
		FoundItem: found,
	}

	key := c.PairKey()

	if existing, ok := f.byPair[key]; ok {
		existing.Method = models.MatchMethodHybrid
		existing.Score += visualBoost
		existing.VisualScore = &similarity

		return
	}

	c.Score = visualBoost
	c.VisualScore = &similarity
	f.byPair[key] = c
	f.order = append(f.order, key)
}

// candidates returns the accumulated feed in insertion order.
func (f *candidateFeed) candidates() []models.MatchCandidate {
	out := make([]models.MatchCandidate, 0, len(f.order))
	for _, key := range f.order {
		out = append(out, *f.byPair[key])
	}

	return out
}
