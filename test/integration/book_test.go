package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：图书模块集成测试
// 覆盖馆藏登记、检索、副本调整、删除保护的完整API流程

// TestBookRegister 测试图书入馆登记
func TestBookRegister(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	t.Run("正常登记", func(t *testing.T) {
		isbn := GenerateTestISBN()
		resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
			"isbn":             isbn,
			"title":            "Go语言实战",
			"author":           "威廉·肯尼迪",
			"publisher":        "人民邮电出版社",
			"category":         "计算机",
			"publication_year": 2017,
			"total_copies":     5,
		}, staffToken)
		require.Equal(t, 0, resp.Code, "图书登记失败: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, isbn, data.ISBN)
		assert.Equal(t, 5, data.TotalCopies)
		assert.Equal(t, 5, data.AvailableCopies, "新书可借数等于总副本数")
		assert.True(t, data.IsAvailable)
	})

	t.Run("重复ISBN应失败", func(t *testing.T) {
		isbn := GenerateTestISBN()
		req := map[string]interface{}{
			"isbn":         isbn,
			"title":        "重复测试",
			"author":       "测试作者",
			"total_copies": 1,
		}

		resp1 := PostJSON(t, BaseURL+"/books", req, staffToken)
		require.Equal(t, 0, resp1.Code)

		resp2 := PostJSON(t, BaseURL+"/books", req, staffToken)
		assert.NotEqual(t, 0, resp2.Code, "重复ISBN应该被拒绝")
	})

	t.Run("读者不能登记图书", func(t *testing.T) {
		_, readerToken := RegisterTestReader(t, "book_reader")
		resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
			"isbn":         GenerateTestISBN(),
			"title":        "越权测试",
			"author":       "测试作者",
			"total_copies": 1,
		}, readerToken)
		assert.NotEqual(t, 0, resp.Code, "需要馆员权限")
	})
}

// TestBookList 测试图书检索
func TestBookList(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	title := fmt.Sprintf("检索专用图书_%d", uniq())
	RegisterTestBook(t, staffToken, title, 3)

	t.Run("公开检索不需要登录", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?keyword="+title, "")
		require.Equal(t, 0, resp.Code, "检索失败: %s", resp.Message)
	})

	t.Run("分页参数", func(t *testing.T) {
		resp := GetJSON(t, BaseURL+"/books?page=1&page_size=5", "")
		require.Equal(t, 0, resp.Code)
	})
}

// TestBookAdjustCopies 测试副本数调整
func TestBookAdjustCopies(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	bookID := RegisterTestBook(t, staffToken, "副本调整测试", 3)

	t.Run("增加副本", func(t *testing.T) {
		resp := PutJSON(t, fmt.Sprintf("%s/books/%d/copies", BaseURL, bookID), map[string]int{
			"total_copies": 5,
		}, staffToken)
		require.Equal(t, 0, resp.Code, "调整副本失败: %s", resp.Message)

		var data BookData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 5, data.TotalCopies)
		assert.Equal(t, 5, data.AvailableCopies)
	})

	t.Run("不能减到低于在借数", func(t *testing.T) {
		readerID, _ := RegisterTestReader(t, "adjust_reader")
		CreateTestLoan(t, staffToken, readerID, bookID)

		resp := PutJSON(t, fmt.Sprintf("%s/books/%d/copies", BaseURL, bookID), map[string]int{
			"total_copies": 0,
		}, staffToken)
		assert.NotEqual(t, 0, resp.Code, "总副本数不能低于在借数")
	})
}

// TestBookDeleteProtection 测试存在未归还借阅时不能删除图书
func TestBookDeleteProtection(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	bookID := RegisterTestBook(t, staffToken, "删除保护测试", 2)
	readerID, readerToken := RegisterTestReader(t, "delete_reader")
	loanID := CreateTestLoan(t, staffToken, readerID, bookID)

	deleteResp := DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), staffToken)
	assert.NotEqual(t, 0, deleteResp.Code, "存在未归还借阅时不能删除")

	returnResp := PostJSON(t, fmt.Sprintf("%s/loans/%d/return", BaseURL, loanID), nil, readerToken)
	require.Equal(t, 0, returnResp.Code, "归还失败: %s", returnResp.Message)

	deleteResp2 := DeleteJSON(t, fmt.Sprintf("%s/books/%d", BaseURL, bookID), staffToken)
	assert.Equal(t, 0, deleteResp2.Code, "归还后应该可以删除: %s", deleteResp2.Message)
}
