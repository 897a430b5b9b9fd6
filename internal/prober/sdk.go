package prober

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// SDKStep is the outcome of one client-library call.
type SDKStep struct {
	Client string
	Name   string
	Detail string
	Err    error
}

// OK reports whether the call succeeded.
func (s SDKStep) OK() bool { return s.Err == nil }

type sdkCall struct {
	name string
	fn   func(context.Context) (string, error)
}

// SDK exercises the server through the official Ollama and OpenAI Go clients,
// the way applications usually talk to it. Every step runs even if an earlier one fails.
func (p *Prober) SDK(ctx context.Context) ([]SDKStep, error) {
	base, err := url.Parse(p.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("sdk: base url: %w", err)
	}
	oc := ollama.NewClient(base, p.client)
	oa := openai.NewClient(
		option.WithBaseURL(p.cfg.BaseURL+"/v1/"),
		option.WithAPIKey(p.cfg.Token),
		option.WithHTTPClient(p.client),
		option.WithMaxRetries(0),
	)

	var steps []SDKStep
	p.println("Testing Ollama Go client...")
	steps = append(steps, p.runSDK(ctx, "ollama", []sdkCall{
		{"heartbeat", func(ctx context.Context) (string, error) {
			return "", oc.Heartbeat(ctx)
		}},
		{"version", func(ctx context.Context) (string, error) {
			return oc.Version(ctx)
		}},
		{"list", func(ctx context.Context) (string, error) {
			resp, err := oc.List(ctx)
			if err != nil {
				return "", err
			}
			names := make([]string, 0, len(resp.Models))
			for _, m := range resp.Models {
				names = append(names, m.Name)
			}
			return fmt.Sprintf("%d models: %s", len(names), strings.Join(names, ", ")), nil
		}},
	})...)
	p.println(separator)

	p.println("Testing OpenAI Go client...")
	steps = append(steps, p.runSDK(ctx, "openai", []sdkCall{
		{"models", func(ctx context.Context) (string, error) {
			page, err := oa.Models.List(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d models", len(page.Data)), nil
		}},
		{"chat", func(ctx context.Context) (string, error) {
			comp, err := oa.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
				Model:    p.cfg.Model,
				Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(p.cfg.Prompt)},
			})
			if err != nil {
				return "", err
			}
			if len(comp.Choices) == 0 {
				return "", fmt.Errorf("no choices in completion %q", comp.ID)
			}
			return comp.Choices[0].Message.Content, nil
		}},
	})...)
	p.println(separator)
	return steps, nil
}

func (p *Prober) runSDK(ctx context.Context, client string, calls []sdkCall) []SDKStep {
	steps := make([]SDKStep, 0, len(calls))
	for _, c := range calls {
		detail, err := c.fn(ctx)
		s := SDKStep{Client: client, Name: c.name, Detail: detail, Err: err}
		if err != nil {
			p.log.Warn().Err(err).Str("client", client).Str("call", c.name).Msg("sdk call failed")
			p.printf("  %s: FAILED: %v\n", c.name, err)
		} else if detail != "" {
			p.printf("  %s: OK (%s)\n", c.name, detail)
		} else {
			p.printf("  %s: OK\n", c.name)
		}
		steps = append(steps, s)
	}
	return steps
}
