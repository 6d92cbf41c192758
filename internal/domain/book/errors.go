package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "ISBN号已存在")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrBookNotAvailable 无可借副本
	ErrBookNotAvailable = apperrors.New(apperrors.ErrCodeBookNotAvailable, "该图书暂无可借副本")

	// ErrInvalidCopies 副本数不合法
	ErrInvalidCopies = apperrors.New(apperrors.ErrCodeInvalidParams, "副本数不合法")

	// ErrCopiesOnLoan 馆藏总数不能小于在借数
	ErrCopiesOnLoan = apperrors.New(apperrors.ErrCodeOperationNotAllowed, "馆藏总数不能小于当前在借数")

	// ErrBookHasActiveLoans 图书存在未归还的借阅,不能删除
	ErrBookHasActiveLoans = apperrors.New(apperrors.ErrCodeOperationNotAllowed, "该图书存在未归还的借阅记录")
)
