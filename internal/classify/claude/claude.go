// Package claude scores symptom messages with the Anthropic Messages API.
package claude

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/careflow/internal/classify"
	"github.com/linnemanlabs/careflow/internal/triage"
)

const systemPrompt = `You are a medical triage severity scorer. Given the user's symptom description, output exactly two codes separated by a comma: medical severity then psychological severity.

Medical: M0=no concern, M1=low/self-care, M2=moderate/doctor recommended, M3=high/emergency.
Psychological: P0=no concern, P1=low, P2=moderate/therapist helpful, P3=crisis/immediate helpline.

Reply with ONLY two codes, e.g. M1,P0 or M2,P2. No other text.`

// Classifier calls Claude for severity scoring. Scope checking stays
// keyword-based so off-topic input never reaches the model.
type Classifier struct {
	client anthropic.Client
	model  anthropic.Model
	logger log.Logger
}

// New builds a Claude classifier with the given API key and model name.
func New(apiKey, model string, logger log.Logger) (*Classifier, error) {
	if apiKey == "" {
		return nil, xerrors.New("claude: api key required")
	}
	if model == "" {
		return nil, xerrors.New("claude: model required")
	}
	return &Classifier{
		client: anthropic.NewClient(
			option.WithAPIKey(apiKey),
			option.WithRequestTimeout(30*time.Second),
		),
		model:  anthropic.Model(model),
		logger: logger,
	}, nil
}

// Classify scores symptoms with the model. Off-scope input short-circuits
// before any API call.
func (c *Classifier) Classify(ctx context.Context, symptoms []string) (*classify.Result, error) {
	if ok, topic := classify.CheckScope(symptoms); !ok {
		return &classify.Result{
			MedicalLevel: triage.M0,
			PsychLevel:   triage.P0,
			MedicalScope: false,
			ScopeTopic:   topic,
		}, nil
	}

	text := strings.TrimSpace(strings.Join(symptoms, " "))
	if text == "" {
		return &classify.Result{MedicalLevel: triage.M0, PsychLevel: triage.P0, MedicalScope: true}, nil
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 16,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("claude messages.new: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	res := parseLevels(sb.String())
	c.logger.Info(ctx, "claude classification",
		"medical_level", string(res.MedicalLevel),
		"psych_level", string(res.PsychLevel),
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
	)
	return res, nil
}

// parseLevels extracts the two codes from model output, tolerating extra
// tokens. Unrecognized output degrades to the conservative M1,P0.
func parseLevels(text string) *classify.Result {
	res := &classify.Result{
		MedicalLevel: triage.M1,
		PsychLevel:   triage.P0,
		MedicalScope: true,
	}
	cleaned := strings.ToUpper(strings.ReplaceAll(text, ",", " "))
	for _, part := range strings.Fields(cleaned) {
		if triage.ValidMedicalLevel(triage.MedicalLevel(part)) {
			res.MedicalLevel = triage.MedicalLevel(part)
		} else if triage.ValidPsychLevel(triage.PsychLevel(part)) {
			res.PsychLevel = triage.PsychLevel(part)
		}
	}
	return res
}
