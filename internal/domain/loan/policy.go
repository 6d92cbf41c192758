package loan

// Policy 借阅资格策略
// 设计说明:
// 1. 纯函数式的规则集合,不依赖Repository(入参由应用层查询后传入)
// 2. 规则有固定的校验顺序,保证同一请求在任何路径下返回同一个拒绝原因:
//    账号停用 → 无可借副本 → 逾期未还 → 借阅上限 → 重复借阅
// 3. 阈值来自配置(config.LoanConfig),不在代码里写死
type Policy struct {
	MaxActiveLoans int   // 同时借阅上限
	MaxRenewals    int   // 续借次数上限
	DurationDays   int   // 借期天数
	FineRateCents  int64 // 逾期罚款(分/天)
}

// BorrowCheck 借阅资格校验的输入
// 各项事实由应用层在同一事务内查询,保证校验的一致性
type BorrowCheck struct {
	UserActive      bool  // 用户处于激活状态
	CopiesAvailable bool  // 图书有可借副本
	ActiveLoans     int64 // 用户未归还的借阅数
	HasOverdue      bool  // 用户存在逾期未还
	AlreadyBorrowed bool  // 用户已借同一图书且未归还
}

// CheckBorrow 借阅资格校验
// 返回第一条不满足的规则对应的业务错误,全部满足返回nil
func (p Policy) CheckBorrow(c BorrowCheck) error {
	if !c.UserActive {
		return ErrUserInactive
	}
	if !c.CopiesAvailable {
		return ErrBookUnavailable
	}
	if c.HasOverdue {
		return ErrOverdueLoans
	}
	if c.ActiveLoans >= int64(p.MaxActiveLoans) {
		return ErrLoanLimitExceeded
	}
	if c.AlreadyBorrowed {
		return ErrDuplicateLoan
	}
	return nil
}
