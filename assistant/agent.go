package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/tmc/langchaingo/llms"
)

const DefaultMaxSteps = 8

const systemPrompt = `You are an e-commerce shopping assistant.
Use searchProduct to look up products and addProductToCart to add a product to the user's cart.
Only add products the user asked for. Answer briefly.`

var (
	ErrTooManySteps = errors.New("assistant: step limit reached")
	ErrNoChoices    = errors.New("assistant: model returned no choices")
)

var addIntent = regexp.MustCompile(`(?i)add to cart|add this|add product`)

// Agent drives the tool-calling loop between the model and the toolbox.
type Agent struct {
	llm      llms.Model
	tools    *Toolbox
	maxSteps int
	newID    func() string
}

func NewAgent(llm llms.Model, tools *Toolbox, maxSteps int) *Agent {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Agent{
		llm:      llm,
		tools:    tools,
		maxSteps: maxSteps,
		newID:    func() string { return uuid.NewString() },
	}
}

// Respond appends message to the conversation and runs the model until it
// produces a reply without tool calls.
func (a *Agent) Respond(ctx context.Context, conv *Conversation, credential, message string) (string, error) {
	conv.append(llms.TextParts(llms.ChatMessageTypeHuman, message))

	for step := 0; step < a.maxSteps; step++ {
		if call, ok := a.autoAddToCart(conv); ok {
			conv.append(llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: []llms.ContentPart{call},
			})
			a.runTools(ctx, conv, credential, []llms.ToolCall{call})
			continue
		}

		resp, err := a.llm.GenerateContent(ctx, conv.prompt(systemPrompt), llms.WithTools(a.tools.Definitions()))
		if err != nil {
			return "", fmt.Errorf("assistant: generate: %w", err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0] == nil {
			return "", ErrNoChoices
		}
		choice := resp.Choices[0]

		calls := lo.Filter(choice.ToolCalls, func(tc llms.ToolCall, _ int) bool {
			return tc.FunctionCall != nil
		})
		if len(calls) == 0 {
			conv.append(llms.TextParts(llms.ChatMessageTypeAI, choice.Content))
			return choice.Content, nil
		}

		msg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if choice.Content != "" {
			msg.Parts = append(msg.Parts, llms.TextContent{Text: choice.Content})
		}
		for _, call := range calls {
			msg.Parts = append(msg.Parts, call)
		}
		conv.append(msg)
		a.runTools(ctx, conv, credential, calls)
	}

	return "", ErrTooManySteps
}

// runTools executes calls concurrently and appends one tool message per
// call, in call order.
func (a *Agent) runTools(ctx context.Context, conv *Conversation, credential string, calls []llms.ToolCall) {
	results := make([]string, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.tools.Execute(ctx, credential, call)
		}()
	}
	wg.Wait()

	for i, call := range calls {
		conv.append(llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: call.ID,
				Name:       call.FunctionCall.Name,
				Content:    results[i],
			}},
		})
	}
}

// autoAddToCart synthesizes an addProductToCart call when the user asked to
// add something and the last search matched exactly one product.
func (a *Agent) autoAddToCart(conv *Conversation) (llms.ToolCall, bool) {
	if !addIntent.MatchString(conv.lastHumanText()) {
		return llms.ToolCall{}, false
	}
	last, ok := conv.last()
	if !ok || last.Role != llms.ChatMessageTypeTool || len(last.Parts) != 1 {
		return llms.ToolCall{}, false
	}
	res, ok := last.Parts[0].(llms.ToolCallResponse)
	if !ok || res.Name != ToolSearchProduct {
		return llms.ToolCall{}, false
	}

	var found struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(res.Content), &found); err != nil || len(found.Data) != 1 {
		return llms.ToolCall{}, false
	}

	args, _ := json.Marshal(addToCartArgs{ProductID: found.Data[0].ID, Qty: 1})
	return llms.ToolCall{
		ID:   "auto_add_" + a.newID(),
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      ToolAddProductToCart,
			Arguments: string(args),
		},
	}, true
}
