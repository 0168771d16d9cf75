// Package provider scores message sentiment with an OpenAI model.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/theimaginaryfoundation/chat-dashboard/chatstats/fileutils"
)

// DefaultModel is used when NewOpenAIScorer is given no model.
const DefaultModel = "gpt-5-mini"

const scorePrompt = `You rate the sentiment polarity of a single chat message.
Messages may be in English, Malay, Indonesian or a mix, and may use slang, abbreviations or emoji.
Return a score between -1 and 1: -1 is very negative, 0 is neutral or factual, 1 is very positive.
Judge only the message text. Do not explain.`

type scoreResponse struct {
	Score float64 `json:"score" jsonschema:"description=Polarity from -1 (very negative) to 1 (very positive),minimum=-1,maximum=1"`
}

var scoreSchema = GenerateSchema[scoreResponse]()

// OpenAIScorer rates messages through the Responses API with a strict JSON schema.
// It is safe for concurrent use.
type OpenAIScorer struct {
	client *openai.Client
	model  string

	// MaxOutputTokens bounds each answer; zero uses 64.
	MaxOutputTokens int64
}

// NewOpenAIScorer builds a scorer. An empty model selects DefaultModel.
func NewOpenAIScorer(apiKey, model string, opts ...option.RequestOption) (*OpenAIScorer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("NewOpenAIScorer: api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIScorer{client: &client, model: model}, nil
}

// Name identifies the scorer and its model in report cache keys.
func (s *OpenAIScorer) Name() string {
	return "openai:" + s.model
}

// Score implements chatstats.Scorer.
func (s *OpenAIScorer) Score(ctx context.Context, text string) (float64, error) {
	if s == nil || s.client == nil {
		return 0, errors.New("OpenAIScorer: client is nil")
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	resp, err := CallWithRetry(ctx, s.client, s.params(text))
	if err != nil {
		return 0, fmt.Errorf("OpenAIScorer: %w", err)
	}
	return ParseScore(resp.OutputText())
}

func (s *OpenAIScorer) params(text string) responses.ResponseNewParams {
	maxOut := s.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = 64
	}
	return responses.ResponseNewParams{
		Model:           s.model,
		MaxOutputTokens: openai.Int(maxOut),
		Instructions:    openai.String(scorePrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "SentimentScore",
					Schema:      scoreSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Message sentiment score JSON"),
					Type:        "json_schema",
				},
			},
		},
	}
}

// ParseScore decodes a model answer and checks the score lies in [-1, 1].
func ParseScore(output string) (float64, error) {
	var out scoreResponse
	if err := fileutils.DecodeModelJSON(output, &out); err != nil {
		return 0, fmt.Errorf("unmarshal score: %w (model_output_prefix=%q)", err, fileutils.Truncate(output, 200))
	}
	if math.IsNaN(out.Score) || out.Score < -1 || out.Score > 1 {
		return 0, fmt.Errorf("model score %v outside [-1, 1]", out.Score)
	}
	return out.Score, nil
}
