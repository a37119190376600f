package azure2openai

import (
	"fmt"
	"strings"
)

const (
	// DefaultEndpoint 是 Azure OpenAI 资源的默认地址模板，{resource} 会被替换为资源名。
	DefaultEndpoint = "https://{resource}.openai.azure.com"
	// DefaultAPIVersion 是转发到 Azure 时使用的 api-version。
	DefaultAPIVersion = "2023-05-15"

	// ModelGPT35 与 ModelEmbeddingAda 是内置的两个逻辑模型名，
	// 分别对应 DEPLOY_NAME_GPT35 / DEPLOY_NAME_EMBEDDING。
	ModelGPT35        = "gpt-3.5-turbo"
	ModelEmbeddingAda = "text-embedding-ada-002"
)

// ModelMapping 表示一个逻辑模型名到 Azure deployment 的映射。
type ModelMapping struct {
	Name       string `yaml:"name"`
	Deployment string `yaml:"deployment"`
}

// ModelTable 是进程生命周期内不变的模型映射表，保持插入顺序（用于 /v1/models 输出）。
type ModelTable struct {
	entries []ModelMapping
	index   map[string]int
}

// NewModelTable 按顺序构建映射表。同名条目以后者的 deployment 为准，但保留首次出现的位置；
// 空名字会被忽略。
func NewModelTable(mappings ...ModelMapping) *ModelTable {
	t := &ModelTable{index: make(map[string]int, len(mappings))}
	for _, m := range mappings {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		deployment := strings.TrimSpace(m.Deployment)
		if i, ok := t.index[name]; ok {
			t.entries[i].Deployment = deployment
			continue
		}
		t.index[name] = len(t.entries)
		t.entries = append(t.entries, ModelMapping{Name: name, Deployment: deployment})
	}
	return t
}

// Deployment 返回逻辑模型对应的 deployment。未映射或 deployment 为空时返回 false，
// 调用方应按客户端错误（403 Missing model mapper）处理。
func (t *ModelTable) Deployment(model string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.index[model]
	if !ok {
		return "", false
	}
	deployment := t.entries[i].Deployment
	if deployment == "" {
		return "", false
	}
	return deployment, true
}

// Models 返回映射表的副本，顺序与构建时一致。
func (t *ModelTable) Models() []ModelMapping {
	if t == nil {
		return nil
	}
	out := make([]ModelMapping, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len 返回映射条目数。
func (t *ModelTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// ParseModelMapper 解析 "model=deployment,model=deployment" 形式的映射串。
func ParseModelMapper(s string) ([]ModelMapping, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []ModelMapping
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, deployment, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		deployment = strings.TrimSpace(deployment)
		if !ok || name == "" || deployment == "" {
			return nil, fmt.Errorf("invalid model mapping %q, want model=deployment", pair)
		}
		out = append(out, ModelMapping{Name: name, Deployment: deployment})
	}
	return out, nil
}
