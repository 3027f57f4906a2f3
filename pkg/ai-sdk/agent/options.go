package agent

import (
	"encoding/json"

	"github.com/agentdesk/agentdesk/pkg/ai-sdk/provider"
	"github.com/agentdesk/agentdesk/pkg/ai-sdk/tool"
)

type Option func(*Agent)

func WithModel(m provider.LanguageModel) Option {
	return func(a *Agent) {
		a.Model = m
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.SystemPrompt = prompt
	}
}

func WithMaxSteps(steps int) Option {
	return func(a *Agent) {
		a.MaxSteps = steps
	}
}

func WithTools(tools ...tool.Tool) Option {
	return func(a *Agent) {
		a.Tools = append(a.Tools, tools...)
	}
}

func marshalArguments(args map[string]any) (string, error) {
	if args == nil {
		return "{}", nil
	}

	data, err := json.Marshal(args)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
