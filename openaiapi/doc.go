// Package openaiapi 提供 OpenAI v1 兼容接口的通用数据结构与辅助函数。
//
// 该包只关注协议层：模型目录、聊天请求/响应、SSE chunk 结构以及少量构建函数。
// 与 Azure 的交互（URL 拼接、鉴权头、流式分帧）在 backend 包中实现。
//
// 示例：生成 /v1/models 的响应体
//
//	list := openaiapi.NewModelList([]string{"gpt-3.5-turbo"})
//	_ = json.NewEncoder(w).Encode(list)
package openaiapi
