package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/LubyRuffy/azure2openai"
	"github.com/LubyRuffy/azure2openai/openaiapi"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const maxUpstreamErrBytes = 8 << 10

type ChatModelConfig struct {
	// Invoker 必填，负责 URL 拼接与 api-key 注入。
	Invoker *Invoker
	// Deployment 必填，Azure 上的 deployment 名。
	Deployment string
	// Model 可选，仅作为请求体中的 model 字段透传。
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
}

// ChatModel 是基于 Azure OpenAI chat/completions 的 ToolCallingChatModel 实现。
type ChatModel struct {
	config ChatModelConfig
	tools  []openaiapi.OpenAITool
}

func NewChatModel(config ChatModelConfig) (*ChatModel, error) {
	if config.Invoker == nil {
		return nil, fmt.Errorf("invoker is required")
	}
	if strings.TrimSpace(config.Deployment) == "" {
		return nil, fmt.Errorf("deployment is required")
	}
	return &ChatModel{config: config}, nil
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	resp, err := m.doRequest(ctx, input, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var completion openaiapi.OpenAIChatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode azure response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("azure response has no choices")
	}
	choice := completion.Choices[0].Message
	content, _ := choice.Content.(string)
	return &schema.Message{
		Role:      schema.Assistant,
		Content:   content,
		ToolCalls: toolCallsFromOpenAI(choice.ToolCalls, false),
	}, nil
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	resp, err := m.doRequest(ctx, input, true)
	if err != nil {
		return nil, err
	}

	sr, sw := schema.Pipe[*schema.Message](64)
	go func() {
		defer sw.Close()
		defer resp.Body.Close()
		err := readChatSSE(ctx, resp.Body, func(chunk openaiapi.OpenAIChatChunk) error {
			for _, choice := range chunk.Choices {
				msg := &schema.Message{
					Role:      schema.Assistant,
					ToolCalls: toolCallsFromOpenAI(choice.Delta.ToolCalls, true),
				}
				if choice.Delta.Content != nil {
					msg.Content = *choice.Delta.Content
				}
				if msg.Content == "" && len(msg.ToolCalls) == 0 {
					continue
				}
				if closed := sw.Send(msg, nil); closed {
					return errStreamClosed
				}
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStreamClosed) {
			sw.Send(nil, err)
		}
	}()
	return sr, nil
}

func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (einoModel.ToolCallingChatModel, error) {
	converted, err := ToolsFromToolInfos(tools)
	if err != nil {
		return nil, err
	}
	cloned := *m
	cloned.tools = converted
	return &cloned, nil
}

var errStreamClosed = errors.New("stream reader closed")

func (m *ChatModel) buildRequestPayload(input []*schema.Message, stream bool) (*openaiapi.OpenAIChatRequest, error) {
	messages := messagesToOpenAI(input)
	if len(messages) == 0 {
		return nil, fmt.Errorf("no valid messages to send")
	}
	return &openaiapi.OpenAIChatRequest{
		Model:       m.config.Model,
		Messages:    messages,
		Stream:      stream,
		MaxTokens:   m.config.MaxTokens,
		Temperature: m.config.Temperature,
		TopP:        m.config.TopP,
		Tools:       m.tools,
	}, nil
}

func (m *ChatModel) doRequest(ctx context.Context, input []*schema.Message, stream bool) (*http.Response, error) {
	payload, err := m.buildRequestPayload(input, stream)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode azure request: %w", err)
	}

	resp, err := m.config.Invoker.Do(ctx, http.MethodPost, m.config.Deployment, OperationChatCompletions, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamErrBytes))
		return nil, azure2openai.WrapError(azure2openai.KindUpstream, "",
			fmt.Errorf("azure request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}
	return resp, nil
}

// readChatSSE 解析 chat/completions 的 SSE 流，逐个 chunk 回调，遇到 [DONE] 或 EOF 结束。
func readChatSSE(ctx context.Context, body io.Reader, onChunk func(openaiapi.OpenAIChatChunk) error) error {
	reader := bufio.NewReader(body)
	var dataLines []string

	flush := func() error {
		if len(dataLines) == 0 {
			return nil
		}
		payload := strings.Join(dataLines, "\n")
		dataLines = dataLines[:0]

		var chunk openaiapi.OpenAIChatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return nil
		}
		return onChunk(chunk)
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				return flush()
			}
			if data != "" {
				dataLines = append(dataLines, data)
			}
		}

		if eof {
			return flush()
		}
	}
}
