// Package openaihttp 提供把 OpenAI v1 风格请求转发到 Azure OpenAI 的 HTTP 处理器。
//
// 该包对外只暴露：
// - 一个 net/http 形式的 Handler（按路径第一段分派到代理、管理或拒绝）
// - Gin 路由注册方法与配套中间件
//
// 凭据存储、模型映射与上游调用器都通过 Config 注入，该包不读取环境变量。
//
// 使用示例：
//
//	// net/http
//	h, _ := openaihttp.Handler(openaihttp.Config{
//		AdminSecret: secret,
//		Models:      azure2openai.NewModelTable(mappings...),
//		Store:       auth.NewMemoryStore(),
//		Invoker:     invoker,
//		StreamPace:  backend.DefaultFramePace,
//	})
//	http.Handle("/", h)
//
//	// gin
//	_ = openaihttp.RegisterGinRoutes(r, cfg)
package openaihttp
