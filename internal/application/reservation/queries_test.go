package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

func TestReservationQuery_Get(t *testing.T) {
	bookRepo := newFakeBookRepo(shelfBook(10, 2, 0))
	reservationRepo := newFakeReservationRepo(bookRepo, pendingReservation(1, 1, 10, 1, testNow))
	uc := NewReservationQueryUseCase(reservationRepo)

	resp, err := uc.Get(context.Background(), 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", resp.Status)

	_, err = uc.Get(context.Background(), 1, 2, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = uc.Get(context.Background(), 1, 2, true)
	assert.NoError(t, err)
}

func TestReservationQuery_ListByStatus(t *testing.T) {
	bookRepo := newFakeBookRepo(shelfBook(10, 2, 0))
	r1 := pendingReservation(1, 1, 10, 1, testNow.Add(-2*time.Hour))
	r2 := pendingReservation(2, 2, 10, 2, testNow.Add(-time.Hour))
	require.NoError(t, r2.Cancel())
	reservationRepo := newFakeReservationRepo(bookRepo, r1, r2)
	uc := NewReservationQueryUseCase(reservationRepo)

	resp, err := uc.List(context.Background(), ListReservationsRequest{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	resp, err = uc.List(context.Background(), ListReservationsRequest{UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, "CANCELLED", resp.Reservations[0].Status)

	// 零值表示不过滤
	resp, err = uc.List(context.Background(), ListReservationsRequest{BookID: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)
}

func TestReservationQuery_QueuePosition(t *testing.T) {
	bookRepo := newFakeBookRepo(shelfBook(10, 2, 0))
	r1 := pendingReservation(1, 1, 10, 1, testNow.Add(-2*time.Hour))
	r2 := pendingReservation(2, 2, 10, 2, testNow.Add(-time.Hour))
	cancelled := pendingReservation(3, 3, 10, 3, testNow)
	require.NoError(t, cancelled.Cancel())
	reservationRepo := newFakeReservationRepo(bookRepo, r1, r2, cancelled)
	uc := NewReservationQueryUseCase(reservationRepo)

	pos, err := uc.QueuePosition(context.Background(), 2, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	// 不在排队队列中的预约位次为0
	pos, err = uc.QueuePosition(context.Background(), 3, 3, false)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	// 他人不可查位次
	_, err = uc.QueuePosition(context.Background(), 1, 9, false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
