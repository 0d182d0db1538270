package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"chit-fund-analyzer/domain"
)

const (
	DefaultAdvisorModel   = "gpt-4"
	DefaultAdvisorTimeout = 30 * time.Second
	advisorMaxTokens      = 400
)

// Completer sends one system and one user message to a chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAICompleter struct {
	cli   oa.Client
	model string
}

func (c *openAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(c.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(system),
			oa.UserMessage(user),
		},
		MaxTokens: oa.Int(advisorMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// AdvisorService explains bidding outcomes in plain language. Without an API
// key it always produces the deterministic fallback text.
type AdvisorService struct {
	client  Completer
	timeout time.Duration
}

func NewAdvisorService(apiKey, model string, timeout time.Duration) *AdvisorService {
	if timeout <= 0 {
		timeout = DefaultAdvisorTimeout
	}
	if apiKey == "" {
		return &AdvisorService{timeout: timeout}
	}
	if model == "" {
		model = DefaultAdvisorModel
	}
	return NewAdvisorServiceWithClient(&openAICompleter{
		cli:   oa.NewClient(option.WithAPIKey(apiKey)),
		model: model,
	}, timeout)
}

// NewAdvisorServiceWithClient wires an arbitrary chat backend.
func NewAdvisorServiceWithClient(client Completer, timeout time.Duration) *AdvisorService {
	if timeout <= 0 {
		timeout = DefaultAdvisorTimeout
	}
	return &AdvisorService{client: client, timeout: timeout}
}

func (s *AdvisorService) Enabled() bool { return s.client != nil }

const advisorSystemPrompt = `You are a personal finance advisor explaining chit fund bidding decisions to an Indian retail investor.
Explain in 3-4 short sentences, in plain language, what the numbers mean for the member.
Treat the annual IRR as the member's effective annual borrowing cost. Quote rupee amounts as given. Do not invent figures.`

// ExplainOptimal describes why the chosen bid best meets objective.
func (s *AdvisorService) ExplainOptimal(
	ctx context.Context,
	best domain.ChitFundAnalysisResult,
	summary domain.SweepSummary,
	objective domain.Objective,
) string {
	if !s.Enabled() {
		return FallbackExplanation(best, summary, objective)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Chit: %d installments, %s per year, winning at installment %d.\n",
		best.TotalInstallments, FrequencyLabel(best.FrequencyPerYear), best.CurrentInstallmentNumber)
	fmt.Fprintf(&b, "Objective: %s.\n", describeObjective(objective))
	fmt.Fprintf(&b, "Recommended bid: %s, prize received: %s, winner installment afterwards: %s.\n",
		best.BidAmount.StringFixed(2), best.PrizeAmount.StringFixed(2), best.WinnerInstallmentAmount.StringFixed(2))
	fmt.Fprintf(&b, "Total paid: %s, net interest cost: %s, annual IRR: %s.\n",
		best.TotalPaid.StringFixed(2), best.NetInterestCost.StringFixed(2), describeRate(best.AnnualIRR))
	if summary.IRR != nil {
		fmt.Fprintf(&b, "Across %d evaluated bids the annual IRR ranged from %.2f%% to %.2f%%.\n",
			summary.Evaluated, summary.IRR.Min*100, summary.IRR.Max*100)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	explanation, err := s.client.Complete(ctx, advisorSystemPrompt, b.String())
	if err != nil {
		log.Printf("Error calling advisor for optimal bid: %v", err)
		return FallbackExplanation(best, summary, objective)
	}
	return strings.TrimSpace(explanation)
}

// FallbackExplanation is the deterministic explanation used without a model.
func FallbackExplanation(best domain.ChitFundAnalysisResult, summary domain.SweepSummary, objective domain.Objective) string {
	msg := fmt.Sprintf(
		"Bidding %s at installment %d gives a prize of %s and costs %s in net interest, an annual rate of %s.",
		best.BidAmount.StringFixed(2), best.CurrentInstallmentNumber, best.PrizeAmount.StringFixed(2),
		best.NetInterestCost.StringFixed(2), describeRate(best.AnnualIRR))
	if summary.IRR == nil || summary.Evaluated <= 1 {
		return msg
	}
	if objective.Kind == domain.TargetAnnualIRR {
		msg += fmt.Sprintf(" Of %d bids evaluated it comes closest to the target annual rate of %.2f%%; rates ranged from %.2f%% to %.2f%%.",
			summary.Evaluated, objective.Target*100, summary.IRR.Min*100, summary.IRR.Max*100)
	} else {
		msg += fmt.Sprintf(" It is the cheapest of %d bids evaluated, whose annual rates ranged from %.2f%% to %.2f%%.",
			summary.Evaluated, summary.IRR.Min*100, summary.IRR.Max*100)
	}
	return msg
}

func describeObjective(o domain.Objective) string {
	if o.Kind == domain.TargetAnnualIRR {
		return fmt.Sprintf("annual IRR closest to %.2f%% (within %.2f%%)", o.Target*100, o.Tolerance*100)
	}
	return "lowest annual IRR"
}

func describeRate(r domain.Rate) string {
	if !r.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%.2f%%", r.Value*100)
}
