package queries

import (
	"context"

	"airdine/internal/infra"
	"airdine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errs.New("booking not found")
	ErrBookingAccess   = errs.New("booking access denied")
)

type BookingQueries interface {
	GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*BookingView, error)
}

type BookingViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int32) ([]*BookingView, error)
}

type bookingQueriesImpl struct {
	repo BookingViewRepo
}

func NewBookingQueries(repo BookingViewRepo) BookingQueries {
	return &bookingQueriesImpl{repo: repo}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID, id uuid.UUID) (*BookingView, error) {
	v, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if v.UserID != actorID {
		return nil, ErrBookingAccess
	}
	return v, nil
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*BookingView, error) {
	return q.repo.FindByUserID(ctx, userID, int32(ValidateLimit(limit, defaultOfferListLimit)))
}
