package openaihttp

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/azure2openai"
	"github.com/LubyRuffy/azure2openai/auth"
	"github.com/LubyRuffy/azure2openai/backend"
)

type Config struct {
	// AdminSecret 必填：路径第一段等于它时进入管理接口。
	AdminSecret string
	// Models 逻辑模型名到 Azure deployment 的映射；nil 时视为空表。
	Models *azure2openai.ModelTable
	// Store 必填：凭据存储，鉴权与管理接口共用。
	Store auth.Store
	// Invoker 必填：Azure 上游调用器。
	Invoker *backend.Invoker
	// StreamPace 流式转发时帧间停顿，0 表示不停顿。
	StreamPace time.Duration
	// Metrics 可选，nil 时不记录指标。
	Metrics *Metrics
	// Logger 可选，nil 时使用 logrus 标准日志器。
	Logger logrus.FieldLogger
}
