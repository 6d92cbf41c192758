package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	// ErrLoanNotFound 借阅记录不存在
	ErrLoanNotFound = apperrors.ErrLoanNotFound

	// ErrInvalidStatus 未知的状态令牌
	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的借阅状态")

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.New(apperrors.ErrCodeInvalidState, "借阅状态不允许此操作")

	// ErrLoanNotReturnable 当前状态不能归还
	ErrLoanNotReturnable = apperrors.New(apperrors.ErrCodeInvalidState, "该借阅记录不在可归还状态")

	// ErrBookUnavailable 无可借副本
	ErrBookUnavailable = apperrors.New(apperrors.ErrCodeBookNotAvailable, "该图书暂无可借副本")

	// ErrUserInactive 用户已停用
	ErrUserInactive = apperrors.New(apperrors.ErrCodeUserInactive, "账号已停用,不能借阅")

	// ErrOverdueLoans 存在逾期未还
	ErrOverdueLoans = apperrors.New(apperrors.ErrCodeOverdueLoans, "存在逾期未还的图书,请先归还")

	// ErrLoanLimitExceeded 超出同时借阅上限
	ErrLoanLimitExceeded = apperrors.New(apperrors.ErrCodeLoanLimitExceeded, "已达到同时借阅上限")

	// ErrDuplicateLoan 已借阅同一图书且未归还
	ErrDuplicateLoan = apperrors.New(apperrors.ErrCodeDuplicateLoan, "您已借阅该图书且尚未归还")

	// ErrRenewalNotAllowed 当前状态不能续借
	ErrRenewalNotAllowed = apperrors.New(apperrors.ErrCodeRenewalNotAllowed, "该借阅记录不能续借")

	// ErrRenewalOverdue 已逾期不能续借
	ErrRenewalOverdue = apperrors.New(apperrors.ErrCodeRenewalNotAllowed, "已逾期的借阅不能续借,请先归还")

	// ErrRenewalLimitReached 续借次数已达上限
	ErrRenewalLimitReached = apperrors.New(apperrors.ErrCodeRenewalNotAllowed, "续借次数已达上限")

	// ErrLoanNotDeletable 非终态借阅不能删除
	ErrLoanNotDeletable = apperrors.New(apperrors.ErrCodeOperationNotAllowed, "只有已还或遗失的借阅记录可以删除")
)
