package reservation

import (
	"context"

	"github.com/xiebiao/library/internal/domain/reservation"
)

// recalcPriorities 重排某本书的排队位次
// 教学要点:
// 1. 必须在已持有该图书行锁的事务内调用,并发重排会产生重复/空洞位次
// 2. 按(priority ASC, reservation_date ASC)取出后密集重编号:
//    未受影响的预约保持相对顺序不变
// 3. 只写位次实际变化的行,减少无效写入
func recalcPriorities(ctx context.Context, repo reservation.Repository, bookID uint) error {
	pending, err := repo.ListPendingByBook(ctx, bookID)
	if err != nil {
		return err
	}

	for i, r := range pending {
		want := i + 1
		if r.Priority == want {
			continue
		}
		if err := repo.UpdatePriority(ctx, r.ID, want); err != nil {
			return err
		}
	}
	return nil
}
