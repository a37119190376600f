package openaihttp

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/azure2openai"
)

// handleAdmin 处理 /{secret}/... 管理路径，rest 为密钥之后的路径段。
//
//	DELETE /{secret}/{username}          吊销
//	*      /{secret}/register/{username} 签发
//	*      /{secret}/reset/{username}    重置
func (s *server) handleAdmin(w http.ResponseWriter, r *http.Request, rest []string) error {
	ctx := r.Context()
	next := ""
	if len(rest) > 0 {
		next = rest[0]
	}
	log := s.logger(r)
	log.WithField("method", r.Method).Info("accessing admin handler")

	var result string
	switch {
	case r.Method == http.MethodDelete:
		if err := s.registry.Revoke(ctx, next); err != nil {
			return err
		}
		log.WithField("user", next).Info("user revoked")
		result = "ok"
	case next == "register" || next == "reset":
		username := ""
		if len(rest) > 1 {
			username = rest[1]
		}
		key, err := s.registry.Register(ctx, username)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"user": username, "action": next}).Info("user key issued")
		result = key
	default:
		return azure2openai.NewError(azure2openai.KindValidation, azure2openai.MsgInvalidAction)
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result + "\n"))
	return nil
}
