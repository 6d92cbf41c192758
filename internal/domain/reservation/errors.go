package reservation

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 预约领域错误定义
var (
	// ErrReservationNotFound 预约不存在
	ErrReservationNotFound = apperrors.ErrReservationNotFound

	// ErrInvalidStatus 无效的预约状态
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "无效的预约状态")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidState, "非法的预约状态转换")

	// ErrDuplicateReservation 重复预约
	ErrDuplicateReservation = apperrors.New(apperrors.ErrCodeDuplicateReserve, "您已预约该图书,请勿重复预约")

	// ErrBookOnLoan 读者已借出该书,无需预约
	ErrBookOnLoan = apperrors.New(apperrors.ErrCodeOperationNotAllowed, "该图书已在您名下借出,无需预约")

	// ErrNotCancellable 当前状态不允许取消
	ErrNotCancellable = apperrors.New(apperrors.ErrCodeInvalidState, "当前状态的预约不能取消")

	// ErrNotConfirmable 当前状态不允许确认
	ErrNotConfirmable = apperrors.New(apperrors.ErrCodeInvalidState, "只有排队中的预约可以确认")
)
