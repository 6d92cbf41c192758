// Package metrics 提供基于Prometheus的指标收集框架
//
// # 核心概念
//
// **1. Counter（计数器）**：只增不减的累计值
//   - 示例：HTTP请求总数、借阅总数、错误总数
//   - 特点：只能调用Inc()递增
//
// **2. Gauge（仪表盘）**：可增可减的瞬时值
//   - 示例：当前在线用户数、goroutine数量、内存使用量
//   - 特点：可以调用Inc()、Dec()、Set()
//
// **3. Histogram（直方图）**：观测值的分布
//   - 示例：HTTP请求耗时、后台清扫任务耗时
//   - 特点：自动计算分位数（P50、P90、P99）
//
// # 使用示例
//
//	// 1. 初始化Metrics
//	metrics.InitMetrics()
//
//	// 2. 在HTTP服务中暴露/metrics端点
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	// 3. 在业务代码中记录指标
//	func CreateLoan(ctx context.Context) error {
//	    start := time.Now()
//
//	    if err := doCreateLoan(ctx); err != nil {
//	        metrics.IncCounter(metrics.LoansRejectedTotal)
//	        return err
//	    }
//
//	    metrics.IncCounter(metrics.LoansCreatedTotal)
//	    metrics.ObserveHistogram(metrics.LoanCreationDuration, time.Since(start).Seconds())
//	    return nil
//	}
//
// # 命名规范
//
// 1. **Counter**: 以`_total`结尾（loans_created_total）
// 2. **Histogram**: 以单位结尾（sweep_duration_seconds）
// 3. **Gauge**: 使用现在时态（http_requests_in_progress）
//
// # 最佳实践
//
// 1. 使用标签（Label）区分不同维度：method、path、status
// 2. 避免高基数标签：不要用user_id、book_id作为标签（无界）
// 3. 合理设置Histogram桶：按业务耗时范围定制Buckets
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/loans）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// LoansCreatedTotal 借阅创建总数（Counter）
	LoansCreatedTotal prometheus.Counter

	// LoansRejectedTotal 借阅被资格校验拒绝的总数（Counter）
	LoansRejectedTotal prometheus.Counter

	// LoansReturnedTotal 归还总数（Counter）
	// 标签：overdue（是否逾期归还，true/false）
	LoansReturnedTotal *prometheus.CounterVec

	// LoanCreationDuration 借阅创建耗时（Histogram）
	LoanCreationDuration prometheus.Histogram

	// 预约业务指标

	// ReservationsCreatedTotal 预约创建总数（Counter）
	ReservationsCreatedTotal prometheus.Counter

	// ReservationsExpiredTotal 过期清扫标记失效的预约总数（Counter）
	ReservationsExpiredTotal prometheus.Counter

	// ReservationsNotifiedTotal 到书通知发送总数（Counter）
	ReservationsNotifiedTotal prometheus.Counter

	// 后台清扫任务指标

	// SweepRunsTotal 清扫任务执行总数（Counter）
	// 标签：sweep（expiry/notify）、result（success/failure）
	SweepRunsTotal *prometheus.CounterVec

	// SweepDuration 清扫任务耗时（Histogram）
	// 标签：sweep（expiry/notify）
	SweepDuration *prometheus.HistogramVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests 熔断器请求总数（Counter）
	// 标签：name（熔断器名称）、result（success/failure/rejected）
	CircuitBreakerRequests *prometheus.CounterVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal 消息消费总数（Counter）
	// 标签：queue（队列名称）、result（success/failure）
	MessagesConsumedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
//
// 设计要点：
// 1. 使用promauto.New*自动注册到默认Registry
// 2. Counter使用*Vec支持标签（多维度统计）
// 3. Histogram的Buckets根据业务场景定制
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 覆盖大部分HTTP请求耗时范围
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 借阅业务指标
	LoansCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_created_total",
			Help: "借阅创建总数",
		},
	)

	LoansRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loans_rejected_total",
			Help: "借阅被资格校验拒绝的总数",
		},
	)

	LoansReturnedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loans_returned_total",
			Help: "归还总数",
		},
		[]string{"overdue"},
	)

	LoanCreationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "loan_creation_duration_seconds",
			Help: "借阅创建耗时（秒）",
			// 借阅创建在单个事务内完成，通常较快
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// 预约业务指标
	ReservationsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_created_total",
			Help: "预约创建总数",
		},
	)

	ReservationsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_expired_total",
			Help: "过期清扫标记失效的预约总数",
		},
	)

	ReservationsNotifiedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservations_notified_total",
			Help: "到书通知发送总数",
		},
	)

	// 后台清扫任务指标
	SweepRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "清扫任务执行总数",
		},
		[]string{"sweep", "result"},
	)

	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sweep_duration_seconds",
			Help: "清扫任务耗时（秒）",
			// 清扫任务整表扫描，耗时范围较宽
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 60},
		},
		[]string{"sweep"},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "熔断器请求总数",
		},
		[]string{"name", "result"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"exchange", "routing_key"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "消息消费总数",
		},
		[]string{"queue", "result"},
	)
}

// IncCounter 递增Counter（便捷函数）
func IncCounter(counter prometheus.Counter) {
	counter.Inc()
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// AddCounter 按批量值递增Counter
func AddCounter(counter prometheus.Counter, delta float64) {
	counter.Add(delta)
}

// IncGauge 递增Gauge
func IncGauge(gauge prometheus.Gauge) {
	gauge.Inc()
}

// DecGauge 递减Gauge
func DecGauge(gauge prometheus.Gauge) {
	gauge.Dec()
}

// SetGauge 设置Gauge值
func SetGauge(gauge prometheus.Gauge, value float64) {
	gauge.Set(value)
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	histogram.Observe(value)
}

// ObserveHistogramVec 记录HistogramVec观测值（带标签）
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}
