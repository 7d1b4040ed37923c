package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trovehq/trove/internal/apperrors"
	"github.com/trovehq/trove/internal/embeddings"
	"github.com/trovehq/trove/internal/models"
	"github.com/trovehq/trove/internal/repository"
)

// FoundItemsRepo is the repository surface used by FoundItemsService.
type FoundItemsRepo interface {
	Create(ctx context.Context, item *models.FoundItem) (*models.FoundItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.FoundItem, error)
	List(ctx context.Context) ([]*models.FoundItem, error)
}

// FoundItemsService handles reporting and listing of found items.
type FoundItemsService struct {
	repo            FoundItemsRepo
	index           VectorIndexWriter
	embeddingClient embeddings.Client
	jobs            ItemEmbeddingInserter
	logger          *slog.Logger
}

// NewFoundItemsService creates a service without embedding support.
func NewFoundItemsService(repo FoundItemsRepo) *FoundItemsService {
	return &FoundItemsService{repo: repo, logger: slog.Default()}
}

// NewFoundItemsServiceWithEmbeddings creates a service that embeds the first
// image of each reported item. When jobs is non-nil the work is enqueued;
// otherwise it runs inline as best effort.
func NewFoundItemsServiceWithEmbeddings(
	repo FoundItemsRepo, index VectorIndexWriter, client embeddings.Client, jobs ItemEmbeddingInserter,
) *FoundItemsService {
	return &FoundItemsService{
		repo:            repo,
		index:           index,
		embeddingClient: client,
		jobs:            jobs,
		logger:          slog.Default(),
	}
}

// Create validates and stores a found item report, then (best effort) embeds
// its first image into the found-item vector index.
func (s *FoundItemsService) Create(
	ctx context.Context, userID uuid.UUID, req *models.CreateFoundItemRequest,
) (*models.FoundItem, error) {
	dateFound, err := time.Parse(dateLayout, req.DateFound)
	if err != nil {
		return nil, apperrors.NewValidationError("dateFound", "dateFound must be YYYY-MM-DD")
	}

	custody := req.Custody
	if custody == "" {
		custody = models.CustodyWithFinder
	}

	item := &models.FoundItem{
		Category:      req.Category,
		Description:   req.Description,
		Color:         req.Color,
		DateFound:     dateFound,
		LocationFound: req.LocationFound,
		Custody:       custody,
		FinderName:    req.FinderName,
		Contact:       req.Contact,
		Consent:       req.Consent,
		Images:        req.Images,
		UserID:        userID,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create found item: %w", err)
	}

	embedItemFirstImage(ctx, embedItemParams{
		Jobs:   s.jobs,
		Client: s.embeddingClient,
		Index:  s.index,
		Logger: s.logger,

		ItemID:     created.ID,
		Kind:       repository.EmbeddingKindFound,
		Category:   created.Category,
		FirstImage: created.FirstImage(),
	})

	return created, nil
}

// List returns all found item reports, newest first.
func (s *FoundItemsService) List(ctx context.Context) ([]*models.FoundItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list found items: %w", err)
	}

	return items, nil
}
