package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 教学说明：测试辅助工具
// 这个文件包含集成测试的通用辅助函数，遵循DRY原则（Don't Repeat Yourself）
// 将重复的代码（HTTP请求、JSON解析）封装成可复用的函数

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 健康检查URL
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// UserData 用户响应数据
type UserData struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// LoginData 登录响应数据
type LoginData struct {
	User         UserData `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
}

// BookData 图书响应数据
type BookData struct {
	ID              uint   `json:"id"`
	ISBN            string `json:"isbn"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
	CopiesOnLoan    int    `json:"copies_on_loan"`
	IsAvailable     bool   `json:"is_available"`
}

// LoanData 借阅响应数据
type LoanData struct {
	ID           uint   `json:"id"`
	UserID       uint   `json:"user_id"`
	BookID       uint   `json:"book_id"`
	LoanDate     string `json:"loan_date"`
	DueDate      string `json:"due_date"`
	ReturnDate   string `json:"return_date"`
	Status       string `json:"status"`
	RenewalCount int    `json:"renewal_count"`
	FineAmount   int64  `json:"fine_amount"`
	FineYuan     string `json:"fine_yuan"`
	IsOverdue    bool   `json:"is_overdue"`
	CanRenew     bool   `json:"can_renew"`
}

// ReservationData 预约响应数据
type ReservationData struct {
	ID              uint   `json:"id"`
	UserID          uint   `json:"user_id"`
	BookID          uint   `json:"book_id"`
	ReservationDate string `json:"reservation_date"`
	ExpiryDate      string `json:"expiry_date"`
	Status          string `json:"status"`
	Priority        int    `json:"priority"`
}

// QueuePositionData 排队位次响应数据
type QueuePositionData struct {
	ReservationID uint `json:"reservation_id"`
	Position      int  `json:"position"`
}

// RequireServer 要求本地服务可用,不可用则跳过
//
// 教学说明：
// 集成测试依赖 docker compose 起好的MySQL/Redis和本地运行的API服务
// 在没有环境的机器上(比如纯单元测试的CI流水线)自动跳过而不是失败
func RequireServer(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("本地API服务不可用,跳过集成测试: %v", err)
	}
	resp.Body.Close()
}

// RequireStaffToken 获取馆员Token,未配置则跳过
//
// 教学说明：
// 馆员账号无法通过公开注册接口创建(注册默认是USER角色),
// 需要在测试环境预先建好并通过环境变量传入:
//   LIBRARY_STAFF_USERNAME / LIBRARY_STAFF_PASSWORD
func RequireStaffToken(t *testing.T) string {
	t.Helper()
	username := os.Getenv("LIBRARY_STAFF_USERNAME")
	password := os.Getenv("LIBRARY_STAFF_PASSWORD")
	if username == "" || password == "" {
		t.Skip("未配置馆员测试账号(LIBRARY_STAFF_USERNAME/PASSWORD),跳过")
	}

	resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, 0, resp.Code, "馆员登录失败: %s", resp.Message)

	var data LoginData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.AccessToken
}

func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求并解析JSON响应
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "POST", url, data, token)
}

// PutJSON 发送PUT请求并解析JSON响应
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, "PUT", url, data, token)
}

// GetJSON 发送GET请求并解析JSON响应
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "GET", url, nil, token)
}

// DeleteJSON 发送DELETE请求并解析JSON响应
func DeleteJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, "DELETE", url, nil, token)
}

var uniqSeq atomic.Int64

// uniq 生成测试内唯一的数字后缀
// 时间戳+自增序号,避免同一纳秒内的并发冲突
func uniq() int64 {
	return time.Now().UnixNano()/1000*100 + uniqSeq.Add(1)%100
}

// GenerateTestUsername 生成唯一的测试用户名
func GenerateTestUsername(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, uniq())
}

// GenerateTestISBN 生成唯一的测试ISBN
// ISBN-13格式：978 + 10位数字
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", uniq()%10000000000)
}

// RegisterTestReader 注册测试读者并返回用户ID和Token
//
// 教学说明：
// 这是一个"高阶"辅助函数，封装了注册+登录的完整流程
// 简化了测试代码，让测试更关注业务逻辑而非基础设施
func RegisterTestReader(t *testing.T, prefix string) (userID uint, token string) {
	t.Helper()

	username := GenerateTestUsername(prefix)
	registerResp := PostJSON(t, BaseURL+"/users/register", map[string]string{
		"username": username,
		"email":    username + "@test.com",
		"password": "Test12345",
	}, "")
	require.Equal(t, 0, registerResp.Code, "注册失败: %s", registerResp.Message)

	var registered UserData
	require.NoError(t, json.Unmarshal(registerResp.Data, &registered))

	loginResp := PostJSON(t, BaseURL+"/users/login", map[string]string{
		"username": username,
		"password": "Test12345",
	}, "")
	require.Equal(t, 0, loginResp.Code, "登录失败: %s", loginResp.Message)

	var loginData LoginData
	require.NoError(t, json.Unmarshal(loginResp.Data, &loginData))

	return registered.ID, loginData.AccessToken
}

// RegisterTestBook 馆员登记测试图书并返回图书ID
func RegisterTestBook(t *testing.T, staffToken, title string, totalCopies int) uint {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
		"isbn":         GenerateTestISBN(),
		"title":        title,
		"author":       "测试作者",
		"publisher":    "测试出版社",
		"category":     "测试分类",
		"total_copies": totalCopies,
		"description":  "集成测试用图书",
	}, staffToken)
	require.Equal(t, 0, resp.Code, "图书登记失败: %s", resp.Message)

	var data BookData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.ID
}

// CreateTestLoan 馆员为读者办理借阅并返回借阅ID
func CreateTestLoan(t *testing.T, staffToken string, userID, bookID uint) uint {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/loans", map[string]interface{}{
		"user_id": userID,
		"book_id": bookID,
	}, staffToken)
	require.Equal(t, 0, resp.Code, "借阅登记失败: %s", resp.Message)

	var data LoanData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.ID
}
