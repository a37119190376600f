package openaihttp

import (
	"net/http"
)

func writeText(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain;charset=UTF-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func writePreflight(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "*")
	h.Set("Access-Control-Allow-Headers", "*")
	w.WriteHeader(http.StatusOK)
}

// hopHeaders 不应原样转发给下游的逐跳头。
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// copyUpstreamHeaders 复制上游响应头；dropLength 为 true 时（内容会被重新分帧）去掉 Content-Length。
func copyUpstreamHeaders(dst, src http.Header, dropLength bool) {
	for k, values := range src {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
	for _, k := range hopHeaders {
		dst.Del(k)
	}
	if dropLength {
		dst.Del("Content-Length")
	}
	dst.Set("Access-Control-Allow-Origin", "*")
}
