// Package config 从环境变量（以及可选的 .env 与 YAML 模型映射文件）加载服务配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/LubyRuffy/azure2openai"
	"github.com/LubyRuffy/azure2openai/auth"
	"github.com/LubyRuffy/azure2openai/backend"
)

// 识别的环境变量。
const (
	EnvAccessToken     = "ACCESS_TOKEN"
	EnvResourceName    = "RESOURCE_NAME"
	EnvAzureAPIKey     = "AZURE_OPENAI_API_KEY"
	EnvDeployGPT35     = "DEPLOY_NAME_GPT35"
	EnvDeployEmbedding = "DEPLOY_NAME_EMBEDDING"
	EnvModelMapper     = "AZURE_MODEL_MAPPER"
	EnvModelMapFile    = "AZURE_MODEL_MAP_FILE"
	EnvEndpoint        = "AZURE_OPENAI_ENDPOINT"
	EnvAPIVersion      = "AZURE_API_VERSION"
	EnvStoreDriver     = "STORE_DRIVER"
	EnvStoreDSN        = "STORE_DSN"
	EnvStreamPace      = "STREAM_PACE"
	EnvListen          = "LISTEN"
	EnvMetricsListen   = "METRICS_LISTEN"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFile         = "LOG_FILE"
	EnvLogJSON         = "LOG_JSON"
)

const DefaultListen = "127.0.0.1:8080"

type LogConfig struct {
	Level string
	File  string
	JSON  bool
}

type Config struct {
	// AccessToken 管理员密钥（出现在管理路径的第一段）。
	AccessToken  string
	ResourceName string
	AzureAPIKey  string
	APIVersion   string
	Endpoint     string
	Models       []azure2openai.ModelMapping

	StoreDriver string
	StoreDSN    string
	StreamPace  time.Duration

	Listen        string
	MetricsListen string
	Log           LogConfig
}

// Load 先尝试加载工作目录下的 .env（不存在时忽略），再从进程环境解析配置。
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	return FromLookup(os.LookupEnv)
}

// LoadUpstream 与 Load 相同，但不要求 ACCESS_TOKEN，供只访问 Azure 的命令行工具使用。
func LoadUpstream() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	return parse(os.LookupEnv, false)
}

// LoadDotEnv 加载工作目录下的 .env；已存在的环境变量不会被覆盖。
func LoadDotEnv() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := godotenv.Load(filepath.Join(wd, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// FromLookup 通过 lookup 读取各项配置；缺少必填项时返回列出全部缺失变量的错误。
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	return parse(lookup, true)
}

func parse(lookup func(string) (string, bool), requireAdmin bool) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		AccessToken:   get(EnvAccessToken),
		ResourceName:  get(EnvResourceName),
		AzureAPIKey:   get(EnvAzureAPIKey),
		APIVersion:    firstNonEmpty(get(EnvAPIVersion), azure2openai.DefaultAPIVersion),
		Endpoint:      firstNonEmpty(get(EnvEndpoint), azure2openai.DefaultEndpoint),
		StoreDriver:   firstNonEmpty(strings.ToLower(get(EnvStoreDriver)), string(auth.DriverMemory)),
		StoreDSN:      get(EnvStoreDSN),
		StreamPace:    backend.DefaultFramePace,
		Listen:        firstNonEmpty(get(EnvListen), DefaultListen),
		MetricsListen: get(EnvMetricsListen),
		Log: LogConfig{
			Level: firstNonEmpty(get(EnvLogLevel), "info"),
			File:  get(EnvLogFile),
		},
	}

	var missing []string
	if requireAdmin && cfg.AccessToken == "" {
		missing = append(missing, EnvAccessToken)
	}
	if cfg.AzureAPIKey == "" {
		missing = append(missing, EnvAzureAPIKey)
	}
	if cfg.ResourceName == "" && strings.Contains(cfg.Endpoint, "{resource}") {
		missing = append(missing, EnvResourceName)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if v := get(EnvStreamPace); v != "" {
		pace, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvStreamPace, err)
		}
		cfg.StreamPace = pace
	}
	if v := get(EnvLogJSON); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvLogJSON, err)
		}
		cfg.Log.JSON = b
	}

	// 内置的两个逻辑模型总是在表中，deployment 缺失时请求期返回 403。
	cfg.Models = []azure2openai.ModelMapping{
		{Name: azure2openai.ModelGPT35, Deployment: get(EnvDeployGPT35)},
		{Name: azure2openai.ModelEmbeddingAda, Deployment: get(EnvDeployEmbedding)},
	}
	extra, err := azure2openai.ParseModelMapper(get(EnvModelMapper))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvModelMapper, err)
	}
	cfg.Models = append(cfg.Models, extra...)

	if path := get(EnvModelMapFile); path != "" {
		fromFile, err := LoadModelMapFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Models = append(cfg.Models, fromFile...)
	}
	return cfg, nil
}

type modelMapFile struct {
	Models []azure2openai.ModelMapping `yaml:"models"`
}

// LoadModelMapFile 读取 YAML 格式的模型映射：
//
//	models:
//	  - name: gpt-4
//	    deployment: gpt4-prod
func LoadModelMapFile(path string) ([]azure2openai.ModelMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model map file: %w", err)
	}
	var file modelMapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse model map file: %w", err)
	}
	for i, m := range file.Models {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("model map file entry %d has empty name", i)
		}
	}
	return file.Models, nil
}

// ModelTable 根据配置构建模型映射表。
func (c *Config) ModelTable() *azure2openai.ModelTable {
	return azure2openai.NewModelTable(c.Models...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
