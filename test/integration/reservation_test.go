package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：预约模块集成测试
// 覆盖排队、位次查询、取消重排、确认的完整API流程

// reserveBook 创建预约并返回预约数据
func reserveBook(t *testing.T, token string, bookID uint) ReservationData {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/reservations", map[string]uint{
		"book_id": bookID,
	}, token)
	require.Equal(t, 0, resp.Code, "创建预约失败: %s", resp.Message)

	var data ReservationData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

// TestReservationQueue 测试预约排队
func TestReservationQueue(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	bookID := RegisterTestBook(t, staffToken, "预约排队测试", 1)

	_, token1 := RegisterTestReader(t, "queue_r1")
	_, token2 := RegisterTestReader(t, "queue_r2")
	_, token3 := RegisterTestReader(t, "queue_r3")

	r1 := reserveBook(t, token1, bookID)
	r2 := reserveBook(t, token2, bookID)
	r3 := reserveBook(t, token3, bookID)

	t.Run("位次按先来后到", func(t *testing.T) {
		assert.Equal(t, 1, r1.Priority)
		assert.Equal(t, 2, r2.Priority)
		assert.Equal(t, 3, r3.Priority)
		assert.Equal(t, "PENDING", r1.Status)
	})

	t.Run("重复预约应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/reservations", map[string]uint{
			"book_id": bookID,
		}, token1)
		assert.NotEqual(t, 0, resp.Code, "同一读者不能重复预约同一本书")
	})

	t.Run("查询排队位次", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/reservations/%d/position", BaseURL, r2.ID), token2)
		require.Equal(t, 0, resp.Code, "查询位次失败: %s", resp.Message)

		var data QueuePositionData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, 2, data.Position)
	})

	t.Run("他人不能查看位次", func(t *testing.T) {
		resp := GetJSON(t, fmt.Sprintf("%s/reservations/%d/position", BaseURL, r2.ID), token1)
		assert.NotEqual(t, 0, resp.Code, "读者只能查看自己的预约")
	})

	t.Run("取消后队列前移", func(t *testing.T) {
		cancelResp := PostJSON(t, fmt.Sprintf("%s/reservations/%d/cancel", BaseURL, r1.ID), nil, token1)
		require.Equal(t, 0, cancelResp.Code, "取消预约失败: %s", cancelResp.Message)

		posResp := GetJSON(t, fmt.Sprintf("%s/reservations/%d/position", BaseURL, r2.ID), token2)
		require.Equal(t, 0, posResp.Code)

		var data QueuePositionData
		require.NoError(t, json.Unmarshal(posResp.Data, &data))
		assert.Equal(t, 1, data.Position, "前面的人取消后位次应前移")
	})

	t.Run("取消后的预约不能再取消", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/reservations/%d/cancel", BaseURL, r1.ID), nil, token1)
		assert.NotEqual(t, 0, resp.Code, "已关闭的预约不能再取消")
	})
}

// TestReservationOnLoanedBook 测试已借同一本书不能预约
func TestReservationOnLoanedBook(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	bookID := RegisterTestBook(t, staffToken, "在借预约测试", 2)
	readerID, readerToken := RegisterTestReader(t, "onloan_reader")
	CreateTestLoan(t, staffToken, readerID, bookID)

	resp := PostJSON(t, BaseURL+"/reservations", map[string]uint{
		"book_id": bookID,
	}, readerToken)
	assert.NotEqual(t, 0, resp.Code, "已借同一本书的读者不能再预约")
}

// TestReservationConfirm 测试馆员确认预约
func TestReservationConfirm(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	// 图书有可借副本时才能确认
	bookID := RegisterTestBook(t, staffToken, "确认预约测试", 1)
	_, token1 := RegisterTestReader(t, "confirm_r1")
	_, token2 := RegisterTestReader(t, "confirm_r2")

	r1 := reserveBook(t, token1, bookID)
	r2 := reserveBook(t, token2, bookID)

	t.Run("读者不能确认预约", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/reservations/%d/confirm", BaseURL, r1.ID), nil, token1)
		assert.NotEqual(t, 0, resp.Code, "需要馆员权限")
	})

	t.Run("馆员确认队首预约", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/reservations/%d/confirm", BaseURL, r1.ID), nil, staffToken)
		require.Equal(t, 0, resp.Code, "确认预约失败: %s", resp.Message)

		var data ReservationData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "ACTIVE", data.Status)

		// 确认后队列重排,下一位变成队首
		posResp := GetJSON(t, fmt.Sprintf("%s/reservations/%d/position", BaseURL, r2.ID), token2)
		require.Equal(t, 0, posResp.Code)
		var pos QueuePositionData
		require.NoError(t, json.Unmarshal(posResp.Data, &pos))
		assert.Equal(t, 1, pos.Position)
	})

	t.Run("已确认的预约不能再确认", func(t *testing.T) {
		resp := PostJSON(t, fmt.Sprintf("%s/reservations/%d/confirm", BaseURL, r1.ID), nil, staffToken)
		assert.NotEqual(t, 0, resp.Code, "只有排队中的预约可以确认")
	})
}
