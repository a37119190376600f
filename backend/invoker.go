package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/LubyRuffy/azure2openai"
)

// Azure deployment 下支持转发的操作。
const (
	OperationChatCompletions = "chat/completions"
	OperationCompletions     = "completions"
)

// InvokerConfig 描述如何访问 Azure OpenAI 资源。
type InvokerConfig struct {
	// ResourceName Azure OpenAI 资源名，用于替换 Endpoint 中的 {resource}。
	ResourceName string
	// APIKey 服务端持有的 Azure key，写入 api-key 请求头；绝不使用调用方的 token。
	APIKey string
	// APIVersion 默认 azure2openai.DefaultAPIVersion。
	APIVersion string
	// Endpoint 地址模板，默认 azure2openai.DefaultEndpoint；测试时可指向 httptest 服务。
	Endpoint string
	// HTTPClient 可选，nil 时内部使用 &http.Client{}。
	HTTPClient *http.Client
}

// Invoker 把已校验、已映射的请求发往 Azure deployment，单次往返，不做重试。
type Invoker struct {
	baseURL    string
	apiKey     string
	apiVersion string
	client     *http.Client
}

func NewInvoker(cfg InvokerConfig) (*Invoker, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("azure api key is required")
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = azure2openai.DefaultEndpoint
	}
	resource := strings.TrimSpace(cfg.ResourceName)
	if strings.Contains(endpoint, "{resource}") {
		if resource == "" {
			return nil, fmt.Errorf("azure resource name is required")
		}
		endpoint = strings.ReplaceAll(endpoint, "{resource}", resource)
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid azure endpoint: %w", err)
	}

	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = azure2openai.DefaultAPIVersion
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &Invoker{
		baseURL:    strings.TrimRight(endpoint, "/"),
		apiKey:     cfg.APIKey,
		apiVersion: version,
		client:     client,
	}, nil
}

// URL 返回 {endpoint}/openai/deployments/{deployment}/{operation}?api-version={version}。
func (i *Invoker) URL(deployment, operation string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		i.baseURL,
		url.PathEscape(deployment),
		strings.TrimLeft(operation, "/"),
		url.QueryEscape(i.apiVersion),
	)
}

// Do 以 method 调用 deployment 的 operation，body 原样作为 JSON 请求体。
// 返回的响应无论状态码如何都交给调用方处理（透传）；只有网络层失败才返回 KindUpstream 错误。
func (i *Invoker) Do(ctx context.Context, method, deployment, operation string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, i.URL(deployment, operation), bytes.NewReader(body))
	if err != nil {
		return nil, azure2openai.WrapError(azure2openai.KindUpstream, "", fmt.Errorf("failed to build azure request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", i.apiKey)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, azure2openai.WrapError(azure2openai.KindUpstream, "", fmt.Errorf("azure request failed: %w", err))
	}
	return resp, nil
}
