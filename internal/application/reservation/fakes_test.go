package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/notification"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// fakeReservationRepo 内存假仓储,队列查询与MySQL实现同序:
// (priority ASC, reservation_date ASC)
type fakeReservationRepo struct {
	mu           sync.Mutex
	nextID       uint
	reservations map[uint]*reservation.Reservation
	books        *fakeBookRepo // ListNotifiable需要联查图书可借数
}

func newFakeReservationRepo(books *fakeBookRepo, items ...*reservation.Reservation) *fakeReservationRepo {
	r := &fakeReservationRepo{
		nextID:       1,
		reservations: make(map[uint]*reservation.Reservation),
		books:        books,
	}
	for _, item := range items {
		r.reservations[item.ID] = item
		if item.ID >= r.nextID {
			r.nextID = item.ID + 1
		}
	}
	return r
}

func (r *fakeReservationRepo) Create(ctx context.Context, item *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.ID = r.nextID
	r.nextID++
	cp := *item
	r.reservations[item.ID] = &cp
	return nil
}

func (r *fakeReservationRepo) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeReservationRepo) Update(ctx context.Context, item *reservation.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reservations[item.ID]; !ok {
		return reservation.ErrReservationNotFound
	}
	cp := *item
	r.reservations[item.ID] = &cp
	return nil
}

func (r *fakeReservationRepo) UpdatePriority(ctx context.Context, id uint, priority int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.reservations[id]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	item.Priority = priority
	return nil
}

func (r *fakeReservationRepo) List(ctx context.Context, params reservation.ListParams) ([]*reservation.Reservation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reservation.Reservation
	for _, item := range r.reservations {
		if params.UserID != 0 && item.UserID != params.UserID {
			continue
		}
		if params.BookID != 0 && item.BookID != params.BookID {
			continue
		}
		if params.Status != nil && item.Status != *params.Status {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeReservationRepo) ListPendingByBook(ctx context.Context, bookID uint) ([]*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reservation.Reservation
	for _, item := range r.reservations {
		if item.BookID == bookID && item.Status == reservation.StatusPending {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ReservationDate.Before(out[j].ReservationDate)
	})
	return out, nil
}

func (r *fakeReservationRepo) CountPendingByBook(ctx context.Context, bookID uint) (int64, error) {
	items, err := r.ListPendingByBook(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (r *fakeReservationRepo) ExistsOpenForBook(ctx context.Context, userID, bookID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.reservations {
		if item.UserID == userID && item.BookID == bookID && item.Status.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) ExistsOpenByBook(ctx context.Context, bookID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.reservations {
		if item.BookID == bookID && item.Status.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReservationRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reservation.Reservation
	for _, item := range r.reservations {
		if item.Status == reservation.StatusPending && now.After(item.ExpiryDate) {
			cp := *item
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeReservationRepo) ListNotifiable(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reservation.Reservation
	for _, item := range r.reservations {
		if item.Status != reservation.StatusPending {
			continue
		}
		if item.NotifiedAt != nil && !item.NotifiedAt.Before(item.ReservationDate) {
			continue
		}
		b, err := r.books.FindByID(ctx, item.BookID)
		if err != nil || b.AvailableCopies <= 0 {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BookID != out[j].BookID {
			return out[i].BookID < out[j].BookID
		}
		return out[i].Priority < out[j].Priority
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeBookRepo struct {
	mu    sync.Mutex
	books map[uint]*book.Book
}

func newFakeBookRepo(books ...*book.Book) *fakeBookRepo {
	r := &fakeBookRepo{books: make(map[uint]*book.Book)}
	for _, b := range books {
		r.books[b.ID] = b
	}
	return r
}

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error { return nil }

func (r *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error { return nil }
func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error      { return nil }

func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	return nil, 0, nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeBookRepo) DecrementAvailable(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return book.ErrBookNotAvailable
	}
	b.AvailableCopies--
	return nil
}

func (r *fakeBookRepo) IncrementAvailable(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.AvailableCopies < b.TotalCopies {
		b.AvailableCopies++
	}
	return nil
}

func (r *fakeBookRepo) MarkCopyLost(ctx context.Context, id uint) error { return nil }

type fakeUserRepo struct {
	users map[uint]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, page, pageSize int) ([]*user.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error      { return nil }

// stubLoanRepo 只覆盖预约用例用到的查询
type stubLoanRepo struct {
	activeBooks map[uint]bool // bookID → 在借中
}

func (s *stubLoanRepo) Create(ctx context.Context, l *loan.Loan) error { return nil }
func (s *stubLoanRepo) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	return nil, loan.ErrLoanNotFound
}
func (s *stubLoanRepo) Update(ctx context.Context, l *loan.Loan) error { return nil }
func (s *stubLoanRepo) Delete(ctx context.Context, id uint) error      { return nil }
func (s *stubLoanRepo) List(ctx context.Context, params loan.ListParams) ([]*loan.Loan, int64, error) {
	return nil, 0, nil
}
func (s *stubLoanRepo) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	return 0, nil
}
func (s *stubLoanRepo) HasOverdue(ctx context.Context, userID uint, now time.Time) (bool, error) {
	return false, nil
}
func (s *stubLoanRepo) ExistsActiveForBook(ctx context.Context, userID, bookID uint) (bool, error) {
	return s.activeBooks[bookID], nil
}
func (s *stubLoanRepo) CountUnreturnedByBook(ctx context.Context, bookID uint) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	sent      []notification.ReservationAvailable
	failSends bool
}

func (n *fakeNotifier) SendLoanConfirmation(ctx context.Context, msg notification.LoanConfirmation) error {
	return nil
}

func (n *fakeNotifier) SendReservationAvailable(ctx context.Context, msg notification.ReservationAvailable) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failSends {
		return context.DeadlineExceeded
	}
	n.sent = append(n.sent, msg)
	return nil
}
