package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LubyRuffy/azure2openai/openaiapi"
	"github.com/cloudwego/eino/schema"
)

// ToolsFromToolInfos 把 eino 的工具声明转换为 chat/completions 的 tools 数组（按名字去重）。
func ToolsFromToolInfos(infos []*schema.ToolInfo) ([]openaiapi.OpenAITool, error) {
	if len(infos) == 0 {
		return nil, nil
	}

	out := make([]openaiapi.OpenAITool, 0, len(infos))
	seen := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		name := strings.TrimSpace(info.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		params, err := toolParameters(info)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", name, err)
		}
		out = append(out, openaiapi.OpenAITool{
			Type: "function",
			Function: openaiapi.OpenAIToolFunction{
				Name:        name,
				Description: info.Desc,
				Parameters:  params,
			},
		})
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func toolParameters(info *schema.ToolInfo) (map[string]interface{}, error) {
	if info.ParamsOneOf == nil {
		return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}, nil
	}
	js, err := info.ParamsOneOf.ToJSONSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to build json schema: %w", err)
	}
	data, err := json.Marshal(js)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json schema: %w", err)
	}
	var params map[string]interface{}
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to decode json schema: %w", err)
	}
	return params, nil
}

// toolCallsFromOpenAI 把 OpenAI tool_calls 转为 eino 的 ToolCall；流式场景下保留 Index 以便合并分片。
func toolCallsFromOpenAI(calls []openaiapi.OpenAIToolCall, withIndex bool) []schema.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]schema.ToolCall, 0, len(calls))
	for _, call := range calls {
		tc := schema.ToolCall{
			ID:   call.ID,
			Type: call.Type,
			Function: schema.FunctionCall{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		}
		if tc.Type == "" {
			tc.Type = "function"
		}
		if withIndex {
			idx := call.Index
			tc.Index = &idx
		}
		out = append(out, tc)
	}
	return out
}

func toolCallsToOpenAI(calls []schema.ToolCall) []openaiapi.OpenAIToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]openaiapi.OpenAIToolCall, 0, len(calls))
	for i, call := range calls {
		var tc openaiapi.OpenAIToolCall
		tc.ID = call.ID
		tc.Index = i
		tc.Type = "function"
		tc.Function.Name = call.Function.Name
		tc.Function.Arguments = call.Function.Arguments
		out = append(out, tc)
	}
	return out
}

func messagesToOpenAI(input []*schema.Message) []openaiapi.OpenAIMessage {
	out := make([]openaiapi.OpenAIMessage, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		m := openaiapi.OpenAIMessage{
			Role:       string(msg.Role),
			Content:    resolveMessageContent(msg),
			ToolCalls:  toolCallsToOpenAI(msg.ToolCalls),
			ToolCallID: msg.ToolCallID,
			Name:       msg.Name,
		}
		if msg.Role == schema.Assistant && len(m.ToolCalls) > 0 && m.Content == "" {
			m.Content = nil
		}
		out = append(out, m)
	}
	return out
}

func resolveMessageContent(msg *schema.Message) string {
	if msg.Content != "" {
		return msg.Content
	}
	if len(msg.UserInputMultiContent) > 0 {
		var builder strings.Builder
		for _, part := range msg.UserInputMultiContent {
			if part.Type == schema.ChatMessagePartTypeText {
				builder.WriteString(part.Text)
			}
		}
		return builder.String()
	}
	return ""
}
