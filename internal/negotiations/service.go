package negotiations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/agrimarket/internal/repo"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/models"
	pkgerrors "github.com/angelmondragon/agrimarket/pkg/errors"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/metrics"
	"github.com/angelmondragon/agrimarket/pkg/pagination"
	"github.com/angelmondragon/agrimarket/pkg/validation"
)

// Service stores and reads negotiation messages.
type Service interface {
	Send(ctx context.Context, input SendInput) (*MessageDTO, error)
	ListByOrder(ctx context.Context, orderID int64) ([]MessageDTO, error)
	ListConversation(ctx context.Context, userA, userB int64) ([]MessageDTO, error)
	PageConversation(ctx context.Context, userA, userB int64, params pagination.Params) (*ConversationPage, error)
}

type service struct {
	repo *Repository
	obs  repo.WriteObserver
}

// NewService builds the negotiations service.
func NewService(r *Repository, logg *logger.Logger, m *metrics.WriteMetrics) (Service, error) {
	if r == nil {
		return nil, fmt.Errorf("negotiations repository required")
	}
	return &service{repo: r, obs: repo.NewWriteObserver("negotiation", logg, m)}, nil
}

func (s *service) Send(ctx context.Context, input SendInput) (dto *MessageDTO, err error) {
	defer func(start time.Time) { err = s.obs.Done(ctx, "send", start, err) }(time.Now())

	input.Message = strings.TrimSpace(input.Message)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	msg := &models.Negotiation{
		OrderID:    input.OrderID,
		SenderID:   input.SenderID,
		ReceiverID: input.ReceiverID,
		Message:    input.Message,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, db.Translate(err, "send message")
	}
	return FromModel(msg), nil
}

func (s *service) ListByOrder(ctx context.Context, orderID int64) ([]MessageDTO, error) {
	rows, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, db.Translate(err, "list order messages")
	}
	return toDTOs(rows), nil
}

func (s *service) ListConversation(ctx context.Context, userA, userB int64) ([]MessageDTO, error) {
	rows, err := s.repo.ListConversation(ctx, userA, userB, nil, 0)
	if err != nil {
		return nil, db.Translate(err, "list conversation")
	}
	return toDTOs(rows), nil
}

func (s *service) PageConversation(ctx context.Context, userA, userB int64, params pagination.Params) (*ConversationPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListConversation(ctx, userA, userB, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, db.Translate(err, "list conversation")
	}

	page := &ConversationPage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{At: last.SentAt, ID: last.ID})
	}
	page.Messages = toDTOs(rows)
	return page, nil
}

func toDTOs(rows []models.Negotiation) []MessageDTO {
	out := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
