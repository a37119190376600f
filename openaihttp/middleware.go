package openaihttp

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/azure2openai"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID 把请求 ID 放入 context。
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID 沿用客户端给的 X-Request-ID，没有时生成一个，并回写到响应头。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}

// RequestLogger 每个请求记录一行。redact 用于在记录前改写路径（例如隐去管理密钥）。
func RequestLogger(logger logrus.FieldLogger, redact func(path string) string) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if redact != nil {
			path = redact(path)
		}
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}).Info("http_request")
	}
}

// Recovery 把 panic 转成与其他错误一致的 403 纯文本响应。
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"error":      recovered,
			"stack":      string(debug.Stack()),
		}).Error("panic recovered")

		message := azure2openai.MsgUnknownReason
		switch v := recovered.(type) {
		case error:
			message = v.Error()
		case string:
			message = v
		}
		if c.Writer.Written() {
			c.Abort()
			return
		}
		writeError(c.Writer, errors.New(message))
		c.Abort()
	})
}

// redactSecret 返回一个把第一段路径中的 secret 替换为 "***" 的函数。
func redactSecret(secret string) func(string) string {
	return func(p string) string {
		if secret == "" {
			return p
		}
		segments := strings.SplitN(p, "/", 3)
		if len(segments) > 1 && segments[1] == secret {
			segments[1] = "***"
			return strings.Join(segments, "/")
		}
		return p
	}
}
