package loan

import (
	"os"
	"testing"

	"github.com/xiebiao/library/pkg/metrics"
)

// TestMain 用例执行路径会上报Prometheus指标,测试前需完成采集器注册
func TestMain(m *testing.M) {
	metrics.InitMetrics()
	os.Exit(m.Run())
}
