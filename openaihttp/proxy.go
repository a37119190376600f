package openaihttp

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/LubyRuffy/azure2openai"
	"github.com/LubyRuffy/azure2openai/auth"
	"github.com/LubyRuffy/azure2openai/backend"
)

// handleProxy 处理 /v{n}/... 路径：先鉴权，再按路径选择上游操作。
func (s *server) handleProxy(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := s.gate.Authenticate(ctx, auth.BearerToken(r.Header.Get("Authorization")))
	if err != nil {
		return err
	}
	log := s.logger(r).WithField("user", user)
	log.Infof("user %s accepted", user)

	var operation string
	switch r.URL.Path {
	case "/v1/chat/completions":
		operation = backend.OperationChatCompletions
	case "/v1/completions":
		operation = backend.OperationCompletions
	case "/v1/models":
		return s.handleModels(w)
	default:
		writeText(w, http.StatusNotFound, "404 Not Found")
		return nil
	}

	req, err := readProxyRequest(r)
	if err != nil {
		return err
	}
	deployment, ok := s.models.Deployment(req.model)
	if !ok {
		return azure2openai.NewError(azure2openai.KindValidation, azure2openai.MsgMissingModelMapper)
	}

	start := time.Now()
	resp, err := s.invoker.Do(ctx, r.Method, deployment, operation, req.payload)
	if err != nil {
		s.metrics.observeUpstream(operation, 0, time.Since(start))
		return err
	}
	defer resp.Body.Close()
	s.metrics.observeUpstream(operation, resp.StatusCode, time.Since(start))

	copyUpstreamHeaders(w.Header(), resp.Header, req.stream)
	w.WriteHeader(resp.StatusCode)

	if !req.stream {
		if _, err := io.Copy(w, resp.Body); err != nil {
			return fmt.Errorf("copy upstream body: %w", err)
		}
		return nil
	}
	log.WithField("deployment", deployment).Debug("relaying stream")
	reframer := &backend.Reframer{Pace: s.pace, OnFrame: s.metrics.observeFrame}
	return reframer.Relay(ctx, w, resp.Body)
}

type proxyRequest struct {
	model string
	// stream 为 true 时上游响应需要重新分帧。
	stream  bool
	payload []byte
}

// readProxyRequest 读取 POST 请求体。请求体是 JSON 对象时原样转发，否则转发 "{}"。
func readProxyRequest(r *http.Request) (proxyRequest, error) {
	req := proxyRequest{payload: []byte("{}")}
	if r.Method != http.MethodPost || r.Body == nil {
		return req, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return req, fmt.Errorf("read request body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return req, nil
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return req, nil
	}
	req.payload = body
	if m := parsed.Get("model"); m.Type == gjson.String {
		req.model = m.Str
	}
	req.stream = streamRequested(parsed.Get("stream"))
	return req, nil
}

// streamRequested 判断 stream 字段是否为真：接受 JSON true 或数字 1。
func streamRequested(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num == 1
	default:
		return false
	}
}
