package openaihttp

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LubyRuffy/azure2openai/openaiapi"
)

// handleModels 根据映射表合成模型目录，不访问上游。
func (s *server) handleModels(w http.ResponseWriter) error {
	mappings := s.models.Models()
	ids := make([]string, 0, len(mappings))
	for _, m := range mappings {
		ids = append(ids, m.Name)
	}
	data, err := json.MarshalIndent(openaiapi.NewModelList(ids), "", "  ")
	if err != nil {
		return fmt.Errorf("encode model list: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return nil
}
