package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/pkg/clock"
)

func TestConfirmReservation_Success(t *testing.T) {
	bookRepo := newFakeBookRepo(shelfBook(10, 2, 1))
	r1 := pendingReservation(1, 1, 10, 1, testNow.Add(-2*time.Hour))
	r2 := pendingReservation(2, 2, 10, 2, testNow.Add(-time.Hour))
	reservationRepo := newFakeReservationRepo(bookRepo, r1, r2)
	userRepo := newFakeUserRepo(activeReader(1))
	notifier := &fakeNotifier{}
	clk := clock.NewFake(testNow)
	uc := NewConfirmReservationUseCase(reservationRepo, bookRepo, userRepo, fakeTxManager{}, notifier, clk)

	resp, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)
	assert.NotEmpty(t, resp.NotifiedAt)

	// 确认的预约离开排队队列,后面的读者成为队首
	queue, _ := reservationRepo.ListPendingByBook(context.Background(), 10)
	require.Len(t, queue, 1)
	assert.Equal(t, uint(2), queue[0].ID)
	assert.Equal(t, 1, queue[0].Priority)

	// 到书通知已发送
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, uint(1), notifier.sent[0].ReservationID)
}

func TestConfirmReservation_NoAvailableCopies(t *testing.T) {
	bookRepo := newFakeBookRepo(shelfBook(10, 2, 0))
	reservationRepo := newFakeReservationRepo(bookRepo, pendingReservation(1, 1, 10, 1, testNow))
	uc := NewConfirmReservationUseCase(reservationRepo, bookRepo, newFakeUserRepo(activeReader(1)), fakeTxManager{}, &fakeNotifier{}, clock.NewFake(testNow))

	_, err := uc.Execute(context.Background(), 1)
	assert.ErrorIs(t, err, book.ErrBookNotAvailable)
}

func TestConfirmReservation_OnlyPending(t *testing.T) {
	bookRepo := newFakeBookRepo(shelfBook(10, 2, 1))
	confirmed := pendingReservation(1, 1, 10, 1, testNow.Add(-time.Hour))
	require.NoError(t, confirmed.Confirm(testNow))
	reservationRepo := newFakeReservationRepo(bookRepo, confirmed)
	uc := NewConfirmReservationUseCase(reservationRepo, bookRepo, newFakeUserRepo(activeReader(1)), fakeTxManager{}, &fakeNotifier{}, clock.NewFake(testNow))

	_, err := uc.Execute(context.Background(), 1)
	assert.ErrorIs(t, err, reservation.ErrNotConfirmable)
}

func TestConfirmReservation_NotifyFailureDoesNotFail(t *testing.T) {
	bookRepo := newFakeBookRepo(shelfBook(10, 2, 1))
	reservationRepo := newFakeReservationRepo(bookRepo, pendingReservation(1, 1, 10, 1, testNow))
	uc := NewConfirmReservationUseCase(reservationRepo, bookRepo, newFakeUserRepo(activeReader(1)), fakeTxManager{}, &fakeNotifier{failSends: true}, clock.NewFake(testNow))

	resp, err := uc.Execute(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)
}
