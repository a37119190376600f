package openaihttp

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/azure2openai"
	"github.com/LubyRuffy/azure2openai/auth"
	"github.com/LubyRuffy/azure2openai/backend"
)

var versionSegment = regexp.MustCompile(`^v\d+$`)

// 请求分类，仅用于指标与日志，不包含管理密钥本身。
const (
	routeProxy     = "proxy"
	routeAdmin     = "admin"
	routePreflight = "preflight"
	routeOther     = "other"
)

type server struct {
	adminSecret string
	models      *azure2openai.ModelTable
	gate        *auth.Gate
	registry    *auth.Registry
	invoker     *backend.Invoker
	pace        time.Duration
	metrics     *Metrics
	log         logrus.FieldLogger
}

// Handler 返回处理全部路径的 http.Handler。
func Handler(cfg Config) (http.Handler, error) {
	return newServer(cfg)
}

func newServer(cfg Config) (*server, error) {
	secret := strings.TrimSpace(cfg.AdminSecret)
	if secret == "" {
		return nil, fmt.Errorf("AdminSecret is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("Store is required")
	}
	if cfg.Invoker == nil {
		return nil, fmt.Errorf("Invoker is required")
	}
	models := cfg.Models
	if models == nil {
		models = azure2openai.NewModelTable()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &server{
		adminSecret: secret,
		models:      models,
		gate:        auth.NewGate(cfg.Store),
		registry:    auth.NewRegistry(cfg.Store),
		invoker:     cfg.Invoker,
		pace:        cfg.StreamPace,
		metrics:     cfg.Metrics,
		log:         logger,
	}, nil
}

var _ http.Handler = (*server)(nil)

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w}
	route := s.classify(r)

	if err := s.dispatch(sw, r, route); err != nil {
		if sw.status != 0 {
			// 响应已开始，只能记录
			s.logger(r).WithError(err).Warn("request failed after response started")
		} else {
			writeError(sw, err)
		}
	}
	s.metrics.observeRequest(route, sw.statusCode(), time.Since(start))
}

func (s *server) classify(r *http.Request) string {
	if r.Method == http.MethodOptions {
		return routePreflight
	}
	first := pathSegment(r.URL.Path, 1)
	switch {
	case versionSegment.MatchString(first):
		return routeProxy
	case s.isAdminSecret(first):
		return routeAdmin
	default:
		return routeOther
	}
}

func (s *server) dispatch(w http.ResponseWriter, r *http.Request, route string) error {
	switch route {
	case routePreflight:
		writePreflight(w)
		return nil
	case routeProxy:
		return s.handleProxy(w, r)
	case routeAdmin:
		segments := strings.Split(r.URL.Path, "/")
		return s.handleAdmin(w, r, segments[2:])
	default:
		return azure2openai.NewError(azure2openai.KindAuthorization, azure2openai.MsgAccessForbidden)
	}
}

func (s *server) isAdminSecret(segment string) bool {
	return subtle.ConstantTimeCompare([]byte(segment), []byte(s.adminSecret)) == 1
}

func (s *server) logger(r *http.Request) logrus.FieldLogger {
	if id := RequestIDFromContext(r.Context()); id != "" {
		return s.log.WithField("request_id", id)
	}
	return s.log
}

// writeError 把任意错误写成 403 纯文本响应，消息为空时使用 "Unknown reason"。
func writeError(w http.ResponseWriter, err error) {
	message := ""
	var e *azure2openai.Error
	if errors.As(err, &e) {
		message = e.Error()
	} else if err != nil {
		message = err.Error()
	}
	if strings.TrimSpace(message) == "" {
		message = azure2openai.MsgUnknownReason
	}
	writeText(w, http.StatusForbidden, message)
}

// pathSegment 返回按 "/" 切分后的第 i 段，不存在时返回空串。
func pathSegment(p string, i int) string {
	segments := strings.Split(p, "/")
	if i < len(segments) {
		return segments[i]
	}
	return ""
}

// statusWriter 记录写出的状态码，并透传 Flush。
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(p)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
