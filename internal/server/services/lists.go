package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/metrics"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ListService implements the owner-scoped list operations. The owner is
// always the identity resolved from the caller's session.
type ListService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewListService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ListService {
	return &ListService{db: db, repomanager: m, logger: logger.With("module", "lists"), now: time.Now}
}

func (s *ListService) CreateList(ctx context.Context, ownerID, title string) (*models.List, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, common.Validation("title is required")
	}
	if ownerID == "" {
		return nil, common.Validation("owner is required")
	}

	list := &models.List{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedBy: ownerID,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.repomanager.Lists(s.db).Create(ctx, list); err != nil {
		return nil, storageErr(err)
	}
	return list, nil
}

// ListLists returns the owner's lists that are not soft-deleted.
func (s *ListService) ListLists(ctx context.Context, ownerID string) ([]models.List, error) {
	lists, err := s.repomanager.Lists(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageErr(err)
	}
	return lists, nil
}

// DeleteList soft-deletes a list owned by ownerID. When nothing matched
// (not the owner, unknown list, already deleted) it returns
// common.ErrNoMatchingRow without saying which.
func (s *ListService) DeleteList(ctx context.Context, listID, ownerID string) error {
	err := common.ErrNoMatchingRow
	if validID(listID) {
		err = s.repomanager.Lists(s.db).SoftDelete(ctx, listID, ownerID, s.now().UTC())
	}
	if err != nil {
		if errors.Is(err, common.ErrNoMatchingRow) {
			metrics.NoMatchingRow.WithLabelValues("delete_list").Inc()
			s.logger.Warn(ctx, "list delete matched no row", "list_id", listID, "owner_id", ownerID)
			return common.ErrNoMatchingRow
		}
		return storageErr(err)
	}
	s.logger.Info(ctx, "list deleted", "list_id", listID, "owner_id", ownerID)
	return nil
}
