package loan

import (
	"context"
	"sync"
	"time"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/notification"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 内存假仓储:单测不依赖MySQL,并发语义用互斥锁模拟条件UPDATE

type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*user.User
}

func newFakeUserRepo(users ...*user.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*user.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, page, pageSize int) ([]*user.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
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

func (r *fakeBookRepo) Create(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[b.ID] = b
	return nil
}

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
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (r *fakeBookRepo) Update(ctx context.Context, b *book.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[b.ID] = b
	return nil
}

func (r *fakeBookRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, int64, error) {
	return nil, 0, nil
}

func (r *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return r.FindByID(ctx, id)
}

// DecrementAvailable 模拟条件UPDATE:互斥锁内检查并扣减
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

func (r *fakeBookRepo) MarkCopyLost(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	if b.TotalCopies <= 0 {
		return book.ErrInvalidCopies
	}
	b.TotalCopies--
	if b.AvailableCopies > 0 {
		b.AvailableCopies--
	}
	return nil
}

type fakeLoanRepo struct {
	mu     sync.Mutex
	nextID uint
	loans  map[uint]*loan.Loan
}

func newFakeLoanRepo(loans ...*loan.Loan) *fakeLoanRepo {
	r := &fakeLoanRepo{loans: make(map[uint]*loan.Loan), nextID: 1}
	for _, l := range loans {
		r.loans[l.ID] = l
		if l.ID >= r.nextID {
			r.nextID = l.ID + 1
		}
	}
	return r
}

func (r *fakeLoanRepo) Create(ctx context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = r.nextID
	r.nextID++
	cp := *l
	r.loans[l.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) FindByID(ctx context.Context, id uint) (*loan.Loan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loans[id]
	if !ok {
		return nil, loan.ErrLoanNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoanRepo) Update(ctx context.Context, l *loan.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[l.ID]; !ok {
		return loan.ErrLoanNotFound
	}
	cp := *l
	r.loans[l.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[id]; !ok {
		return loan.ErrLoanNotFound
	}
	delete(r.loans, id)
	return nil
}

func (r *fakeLoanRepo) List(ctx context.Context, params loan.ListParams) ([]*loan.Loan, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*loan.Loan
	for _, l := range r.loans {
		if params.UserID > 0 && l.UserID != params.UserID {
			continue
		}
		if params.BookID > 0 && l.BookID != params.BookID {
			continue
		}
		if params.Status != nil && l.Status != *params.Status {
			continue
		}
		if params.From != nil && l.LoanDate.Before(*params.From) {
			continue
		}
		if params.To != nil && !l.LoanDate.Before(*params.To) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLoanRepo) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		if l.UserID == userID && (l.Status == loan.StatusActive || l.Status == loan.StatusOverdue) {
			n++
		}
	}
	return n, nil
}

func (r *fakeLoanRepo) HasOverdue(ctx context.Context, userID uint, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.UserID != userID {
			continue
		}
		if l.Status == loan.StatusOverdue {
			return true, nil
		}
		if l.Status == loan.StatusActive && now.After(l.DueDate) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoanRepo) ExistsActiveForBook(ctx context.Context, userID, bookID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loans {
		if l.UserID == userID && l.BookID == bookID &&
			(l.Status == loan.StatusActive || l.Status == loan.StatusOverdue) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLoanRepo) CountUnreturnedByBook(ctx context.Context, bookID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, l := range r.loans {
		if l.BookID == bookID && (l.Status == loan.StatusActive || l.Status == loan.StatusOverdue) {
			n++
		}
	}
	return n, nil
}

type fakeNotifier struct {
	mu            sync.Mutex
	loanConfirms  []notification.LoanConfirmation
	reservations  []notification.ReservationAvailable
	failLoanSends bool
}

func (n *fakeNotifier) SendLoanConfirmation(ctx context.Context, msg notification.LoanConfirmation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failLoanSends {
		return context.DeadlineExceeded
	}
	n.loanConfirms = append(n.loanConfirms, msg)
	return nil
}

func (n *fakeNotifier) SendReservationAvailable(ctx context.Context, msg notification.ReservationAvailable) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reservations = append(n.reservations, msg)
	return nil
}

// stubReservationRepo 只覆盖续借校验用到的查询,其余方法不会被借阅用例调用
type stubReservationRepo struct {
	openBooks map[uint]bool
}

func (s *stubReservationRepo) Create(ctx context.Context, r *reservation.Reservation) error { return nil }
func (s *stubReservationRepo) FindByID(ctx context.Context, id uint) (*reservation.Reservation, error) {
	return nil, reservation.ErrReservationNotFound
}
func (s *stubReservationRepo) Update(ctx context.Context, r *reservation.Reservation) error { return nil }
func (s *stubReservationRepo) UpdatePriority(ctx context.Context, id uint, priority int) error {
	return nil
}
func (s *stubReservationRepo) List(ctx context.Context, params reservation.ListParams) ([]*reservation.Reservation, int64, error) {
	return nil, 0, nil
}
func (s *stubReservationRepo) ListPendingByBook(ctx context.Context, bookID uint) ([]*reservation.Reservation, error) {
	return nil, nil
}
func (s *stubReservationRepo) CountPendingByBook(ctx context.Context, bookID uint) (int64, error) {
	return 0, nil
}
func (s *stubReservationRepo) ExistsOpenForBook(ctx context.Context, userID, bookID uint) (bool, error) {
	return false, nil
}
func (s *stubReservationRepo) ExistsOpenByBook(ctx context.Context, bookID uint) (bool, error) {
	return s.openBooks[bookID], nil
}
func (s *stubReservationRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*reservation.Reservation, error) {
	return nil, nil
}
func (s *stubReservationRepo) ListNotifiable(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	return nil, nil
}
