package openaihttp

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// RegisterGinRoutes 把全部路径交给 Handler 处理；路由分派在 Handler 内部完成。
func RegisterGinRoutes(r gin.IRouter, cfg Config) error {
	if r == nil {
		return fmt.Errorf("router is nil")
	}
	h, err := Handler(cfg)
	if err != nil {
		return err
	}
	r.Any("/*path", gin.WrapH(h))
	return nil
}

// NewEngine 创建带请求 ID、日志与 panic 恢复中间件的 gin 引擎并注册路由。
func NewEngine(cfg Config) (*gin.Engine, error) {
	engine := gin.New()
	engine.Use(
		RequestID(),
		RequestLogger(cfg.Logger, redactSecret(cfg.AdminSecret)),
		Recovery(cfg.Logger),
	)
	if err := RegisterGinRoutes(engine, cfg); err != nil {
		return nil, err
	}
	return engine, nil
}
