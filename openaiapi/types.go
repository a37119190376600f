package openaiapi

import (
	"time"

	"github.com/google/uuid"
)

// ==================== OpenAI 兼容数据结构 ====================

// OpenAIMessage OpenAI 消息格式。
type OpenAIMessage struct {
	Role       string           `json:"role"`
	Content    any              `json:"content"`
	ToolCalls  []OpenAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	Name       string           `json:"name,omitempty"`
}

// OpenAIToolCall OpenAI 工具调用格式。
type OpenAIToolCall struct {
	ID       string `json:"id"`
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// OpenAITool OpenAI 工具定义。
type OpenAITool struct {
	Type     string             `json:"type"`
	Function OpenAIToolFunction `json:"function"`
}

// OpenAIToolFunction OpenAI 工具函数定义。
type OpenAIToolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// OpenAIChatRequest OpenAI 聊天请求格式。Azure 以 deployment 区分模型，Model 可留空。
type OpenAIChatRequest struct {
	Model       string          `json:"model,omitempty"`
	Messages    []OpenAIMessage `json:"messages"`
	Stream      bool            `json:"stream"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
	Temperature *float32        `json:"temperature,omitempty"`
	TopP        *float32        `json:"top_p,omitempty"`
	Stop        any             `json:"stop,omitempty"`
	Tools       []OpenAITool    `json:"tools,omitempty"`
}

// OpenAIUsage OpenAI token 使用统计。
type OpenAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// OpenAIChoice OpenAI 非流式响应选项。
type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason *string       `json:"finish_reason"`
}

// OpenAIDelta OpenAI 流式响应的 delta（用于正确处理 omitempty）。
type OpenAIDelta struct {
	Role      string           `json:"role,omitempty"`
	Content   *string          `json:"content,omitempty"` // 使用指针以便 omitempty 正确工作
	ToolCalls []OpenAIToolCall `json:"tool_calls,omitempty"`
}

// OpenAIChunkChoice OpenAI 流式响应选项。
type OpenAIChunkChoice struct {
	Index        int         `json:"index"`
	Delta        OpenAIDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"`
}

// OpenAIChatCompletion OpenAI 非流式响应。
type OpenAIChatCompletion struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   OpenAIUsage    `json:"usage,omitempty"`
}

// OpenAIChatChunk OpenAI 流式响应块。
type OpenAIChatChunk struct {
	ID      string              `json:"id"`
	Object  string              `json:"object"`
	Created int64               `json:"created"`
	Model   string              `json:"model"`
	Choices []OpenAIChunkChoice `json:"choices"`
	Usage   *OpenAIUsage        `json:"usage,omitempty"`
}

// OpenAIModelPermission 是旧版 /v1/models 中的 permission 元素。
type OpenAIModelPermission struct {
	ID                 string  `json:"id"`
	Object             string  `json:"object"`
	Created            int64   `json:"created"`
	AllowCreateEngine  bool    `json:"allow_create_engine"`
	AllowSampling      bool    `json:"allow_sampling"`
	AllowLogprobs      bool    `json:"allow_logprobs"`
	AllowSearchIndices bool    `json:"allow_search_indices"`
	AllowView          bool    `json:"allow_view"`
	AllowFineTuning    bool    `json:"allow_fine_tuning"`
	Organization       string  `json:"organization"`
	Group              *string `json:"group"`
	IsBlocking         bool    `json:"is_blocking"`
}

// OpenAIModel OpenAI 模型信息。
type OpenAIModel struct {
	ID         string                  `json:"id"`
	Object     string                  `json:"object"`
	Created    int64                   `json:"created"`
	OwnedBy    string                  `json:"owned_by"`
	Permission []OpenAIModelPermission `json:"permission"`
	Root       string                  `json:"root"`
	Parent     *string                 `json:"parent"`
}

// OpenAIModelList OpenAI 模型列表响应。
type OpenAIModelList struct {
	Object string        `json:"object"`
	Data   []OpenAIModel `json:"data"`
}

// OpenAIError OpenAI 错误响应。
type OpenAIError struct {
	Error struct {
		Message string  `json:"message"`
		Type    string  `json:"type"`
		Param   any     `json:"param"`
		Code    *string `json:"code"`
	} `json:"error"`
}

// ==================== 辅助函数 ====================

const (
	// ModelCreatedAt 与 ModelPermissionCreatedAt 沿用旧版目录里的固定时间戳，客户端缓存依赖它们不变。
	ModelCreatedAt           int64 = 1677610602
	ModelPermissionCreatedAt int64 = 1679602088
	modelPermissionID              = "modelperm-M56FXnG1AsIr3SXq8BYPvXJA"
)

// NewModelList 按给定顺序生成模型目录，每个 id 一条，root 与 id 相同，parent 为 null。
func NewModelList(ids []string) OpenAIModelList {
	data := make([]OpenAIModel, 0, len(ids))
	for _, id := range ids {
		data = append(data, OpenAIModel{
			ID:      id,
			Object:  "model",
			Created: ModelCreatedAt,
			OwnedBy: "openai",
			Permission: []OpenAIModelPermission{{
				ID:                 modelPermissionID,
				Object:             "model_permission",
				Created:            ModelPermissionCreatedAt,
				AllowCreateEngine:  false,
				AllowSampling:      true,
				AllowLogprobs:      true,
				AllowSearchIndices: false,
				AllowView:          true,
				AllowFineTuning:    false,
				Organization:       "*",
				IsBlocking:         false,
			}},
			Root: id,
		})
	}
	return OpenAIModelList{Object: "list", Data: data}
}

// NewChatCompletionID 生成聊天完成 ID。
func NewChatCompletionID() string {
	return "chatcmpl-" + uuid.New().String()[:8]
}

// ToChatChunk 创建流式响应块。
func ToChatChunk(id, model, content string, finishReason *string) OpenAIChatChunk {
	delta := OpenAIDelta{
		Role: "assistant",
	}
	// 只有当 content 非空时才设置，这样 omitempty 会正确工作
	if content != "" {
		delta.Content = &content
	}
	return OpenAIChatChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []OpenAIChunkChoice{
			{
				Index:        0,
				Delta:        delta,
				FinishReason: finishReason,
			},
		},
	}
}

// ToChatCompletion 创建非流式响应。
func ToChatCompletion(id, model, content string, promptTokens, completionTokens int) OpenAIChatCompletion {
	finishReason := "stop"
	return OpenAIChatCompletion{
		ID:      id,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []OpenAIChoice{
			{
				Index: 0,
				Message: OpenAIMessage{
					Role:    "assistant",
					Content: content,
				},
				FinishReason: &finishReason,
			},
		},
		Usage: OpenAIUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}
