package model

import (
	"sync"

	"github.com/cloudwego/eino/schema"
)

// Pricing is the USD cost per 1M tokens.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

// Gemini list prices for text tokens.
var defaultPricing = map[string]Pricing{
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
	"gemini-2.5-pro":        {InputPerM: 1.25, OutputPerM: 10.00},
}

// ResolvePricing returns the pricing of a model, zero when unknown.
func ResolvePricing(model string) Pricing {
	return defaultPricing[model]
}

// ComputeCost converts token usage to USD.
func ComputeCost(usage *schema.TokenUsage, p Pricing) (inputCost, outputCost, total float64) {
	if usage == nil {
		return 0, 0, 0
	}
	inputCost = p.InputPerM * float64(usage.PromptTokens) / 1_000_000.0
	outputCost = p.OutputPerM * float64(usage.CompletionTokens) / 1_000_000.0
	total = inputCost + outputCost
	return
}

// UsageMeter accumulates model usage over one turn. Safe for concurrent use.
type UsageMeter struct {
	mu               sync.Mutex
	calls            int
	promptTokens     int
	completionTokens int
	totalUSD         float64
}

// Record adds the usage carried by msg, if any.
func (m *UsageMeter) Record(modelName string, msg *schema.Message) {
	if m == nil || msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return
	}
	usage := msg.ResponseMeta.Usage
	_, _, total := ComputeCost(usage, ResolvePricing(modelName))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.promptTokens += usage.PromptTokens
	m.completionTokens += usage.CompletionTokens
	m.totalUSD += total
}

// Snapshot returns calls, prompt tokens, completion tokens and total USD.
func (m *UsageMeter) Snapshot() (calls, prompt, completion int, usd float64) {
	if m == nil {
		return 0, 0, 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, m.promptTokens, m.completionTokens, m.totalUSD
}
