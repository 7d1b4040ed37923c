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

// Wire formats for item dates and times, matching the original report forms.
const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// VectorIndexWriter provides the vector index writes needed when items are created.
type VectorIndexWriter interface {
	Upsert(ctx context.Context, kind repository.EmbeddingKind, itemID uuid.UUID, embedding []float32, category string) error
}

// LostItemsRepo is the repository surface used by LostItemsService.
type LostItemsRepo interface {
	Create(ctx context.Context, item *models.LostItem) (*models.LostItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.LostItem, error)
	List(ctx context.Context) ([]*models.LostItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.LostItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// LostItemsService handles reporting and listing of lost items.
type LostItemsService struct {
	repo            LostItemsRepo
	index           VectorIndexWriter
	embeddingClient embeddings.Client
	jobs            ItemEmbeddingInserter
	logger          *slog.Logger
}

// NewLostItemsService creates a service without embedding support; reported
// items are stored but never indexed for visual matching.
func NewLostItemsService(repo LostItemsRepo) *LostItemsService {
	return &LostItemsService{repo: repo, logger: slog.Default()}
}

// NewLostItemsServiceWithEmbeddings creates a service that embeds the first
// image of each reported item. When jobs is non-nil the work is enqueued;
// otherwise it runs inline as best effort.
func NewLostItemsServiceWithEmbeddings(
	repo LostItemsRepo, index VectorIndexWriter, client embeddings.Client, jobs ItemEmbeddingInserter,
) *LostItemsService {
	return &LostItemsService{
		repo:            repo,
		index:           index,
		embeddingClient: client,
		jobs:            jobs,
		logger:          slog.Default(),
	}
}

// Create validates and stores a lost item report, then (best effort) embeds
// its first image into the lost-item vector index. Embedding failures never
// fail the report.
func (s *LostItemsService) Create(
	ctx context.Context, userID uuid.UUID, req *models.CreateLostItemRequest,
) (*models.LostItem, error) {
	dateLost, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("date", "date must be YYYY-MM-DD")
	}

	var timeLost *time.Time

	if req.Time != "" {
		t, err := time.Parse(timeLayout, req.Time)
		if err != nil {
			return nil, apperrors.NewValidationError("time", "time must be HH:MM")
		}

		timeLost = &t
	}

	item := &models.LostItem{
		Category:    req.Category,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Brand:       req.Brand,
		Serial:      req.Serial,
		DateLost:    dateLost,
		TimeLost:    timeLost,
		Location:    req.Location,
		Landmark:    req.Landmark,
		OwnerName:   req.OwnerName,
		Email:       req.Email,
		Phone:       req.Phone,
		Images:      req.Images,
		UserID:      userID,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create lost item: %w", err)
	}

	embedItemFirstImage(ctx, embedItemParams{
		Jobs:   s.jobs,
		Client: s.embeddingClient,
		Index:  s.index,
		Logger: s.logger,

		ItemID:     created.ID,
		Kind:       repository.EmbeddingKindLost,
		Category:   created.Category,
		FirstImage: created.FirstImage(),
	})

	return created, nil
}

// UpdateStatus changes the status of one of the user's own reports. Reports
// belonging to other users are indistinguishable from missing ones.
func (s *LostItemsService) UpdateStatus(ctx context.Context, userID, itemID uuid.UUID, status string) error {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("get lost item: %w", err)
	}

	if item.UserID != userID {
		return repository.ErrLostItemNotFound
	}

	if err := s.repo.UpdateStatus(ctx, itemID, status); err != nil {
		return fmt.Errorf("update lost item status: %w", err)
	}

	return nil
}

// List returns all lost item reports, newest first.
func (s *LostItemsService) List(ctx context.Context) ([]*models.LostItem, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lost items: %w", err)
	}

	return items, nil
}
