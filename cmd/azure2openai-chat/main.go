package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/azure2openai"
	"github.com/LubyRuffy/azure2openai/backend"
	"github.com/LubyRuffy/azure2openai/config"
)

const (
	defaultAgentName        = "azure2openai-chat"
	defaultAgentDescription = "chat agent backed by an Azure OpenAI deployment"
)

func main() {
	var (
		model       = flag.String("model", azure2openai.ModelGPT35, "logical model name, resolved through the model mapping")
		deployment  = flag.String("deployment", "", "azure deployment name (overrides the model mapping)")
		input       = flag.String("input", "你好，介绍一下你自己", "user input")
		instruction = flag.String("instruction", "", "system instruction")
		stream      = flag.Bool("stream", false, "stream the answer")
	)
	flag.Parse()

	cfg, err := config.LoadUpstream()
	if err != nil {
		logrus.Fatalf("load config failed: %v", err)
	}

	target := *deployment
	if target == "" {
		var ok bool
		target, ok = cfg.ModelTable().Deployment(*model)
		if !ok {
			logrus.Fatalf("%s: %s", azure2openai.MsgMissingModelMapper, *model)
		}
	}

	invoker, err := backend.NewInvoker(backend.InvokerConfig{
		ResourceName: cfg.ResourceName,
		APIKey:       cfg.AzureAPIKey,
		APIVersion:   cfg.APIVersion,
		Endpoint:     cfg.Endpoint,
	})
	if err != nil {
		logrus.Fatalf("create invoker failed: %v", err)
	}

	m, err := backend.NewChatModel(backend.ChatModelConfig{
		Invoker:    invoker,
		Deployment: target,
		Model:      firstNonEmpty(*model, target),
	})
	if err != nil {
		logrus.Fatalf("create model failed: %v", err)
	}

	ctx := context.Background()
	agent, err := adk.NewChatModelAgent(ctx, &adk.ChatModelAgentConfig{
		Name:        defaultAgentName,
		Description: defaultAgentDescription,
		Instruction: *instruction,
		Model:       m,
	})
	if err != nil {
		logrus.Fatalf("create agent failed: %v", err)
	}

	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent:           agent,
		EnableStreaming: *stream,
	})

	iter := runner.Run(ctx, []adk.Message{schema.UserMessage(*input)})
	for {
		ev, ok := iter.Next()
		if !ok {
			break
		}
		if ev.Err != nil {
			logrus.Fatalf("run failed: %v", ev.Err)
		}
		if ev.Output == nil || ev.Output.MessageOutput == nil {
			continue
		}
		if err := printMessage(ev.Output.MessageOutput); err != nil {
			logrus.Fatalf("read output failed: %v", err)
		}
	}
	fmt.Println()
}

// printMessage 输出一条消息；流式输出逐块打印。
func printMessage(out *adk.MessageVariant) error {
	if !out.IsStreaming {
		if out.Message != nil && out.Message.Content != "" {
			fmt.Print(out.Message.Content)
		}
		return nil
	}
	if out.MessageStream == nil {
		return nil
	}
	defer out.MessageStream.Close()
	for {
		chunk, err := out.MessageStream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if chunk != nil && chunk.Content != "" {
			fmt.Print(chunk.Content)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
