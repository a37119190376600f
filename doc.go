// Package azure2openai 提供将 OpenAI 风格的 /v1 请求转发到 Azure OpenAI 部署的代理能力，
// 并附带一层基于静态 API Key 的访问控制，让只会说 OpenAI 协议的客户端直接使用 Azure 资源。
//
// 该仓库主要包含以下能力：
//  1. 模型映射：根包维护逻辑模型名到 Azure deployment 的静态映射，并生成 /v1/models 目录
//  2. 访问控制：auth 包负责凭据存储、Bearer token 校验以及管理员签发/吊销 Key
//  3. 上游转发：backend 包拼接 Azure URL、注入服务端 api-key，并对流式响应做分帧节流
//  4. HTTP 层：openaihttp 包提供分发器（代理路径 / 管理路径）与 Gin 路由注册
package azure2openai
