// File path: internal/llm/providers/openai_client.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	openai "github.com/openai/openai-go/v2"

	"github.com/termcheck/termcheck/internal/common"
	"github.com/termcheck/termcheck/internal/term"
)

// OpenAIProvider asks a chat model for contextual terminology findings. The
// model is instructed to answer with a JSON object matching the issue shape;
// anything it returns is validated and re-anchored before use.
type OpenAIProvider struct {
	client    openai.Client
	chatModel string
}

func NewOpenAIProvider(client openai.Client, chatModel string) *OpenAIProvider {
	if chatModel == "" {
		chatModel = "gpt-4o"
	}
	common.Logger().Info("llm: OpenAI provider configured", "chat_model", chatModel)
	return &OpenAIProvider{client: client, chatModel: chatModel}
}

func (o *OpenAIProvider) Analyze(ctx context.Context, req Request) ([]term.Issue, error) {
	logger := common.Logger()
	logger.Debug("llm: sending analysis request", "model", o.chatModel, "language", req.Language, "text_length", len(req.Text))
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.chatModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req.Language, req.TermContext)),
			openai.UserMessage(userPrompt(req)),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(1000),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		logger.Error("llm: analysis request failed", "error", err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}
	issues, err := parseIssues(resp.Choices[0].Message.Content, req.Text)
	if err != nil {
		logger.Error("llm: response parse failed", "error", err)
		return nil, err
	}
	logger.Debug("llm: analysis succeeded", "issues", len(issues))
	return issues, nil
}

func (o *OpenAIProvider) Name() string {
	return "openai"
}

func systemPrompt(language, termContext string) string {
	var b strings.Builder
	if language == "jp" {
		b.WriteString("You are a professional UI/UX terminology expert specializing in Japanese interface text. ")
		b.WriteString("Analyze the provided text for terminology consistency, clarity, and natural expression, ")
		b.WriteString("including formality level and katakana/hiragana/kanji usage.\n")
	} else {
		b.WriteString("You are a professional UI/UX terminology expert specializing in English interface text. ")
		b.WriteString("Analyze the provided text for terminology consistency, clarity, and industry standard usage.\n")
	}
	b.WriteString(`Respond with a JSON object of this structure:
{
  "issues": [
    {
      "type": "terminology_suggestion",
      "original": "exact text from input",
      "suggestion": "recommended replacement",
      "start": 0,
      "end": 5,
      "severity": "warning",
      "reason": "explanation of the issue"
    }
  ]
}
Offsets are character positions into the input text. Only report spans that appear verbatim in the input.`)
	if termContext != "" {
		b.WriteString("\n\nRelevant terminology context:\n")
		b.WriteString(termContext)
	}
	return b.String()
}

func userPrompt(req Request) string {
	prompt := fmt.Sprintf("Analyze this %s text: %q", strings.ToUpper(req.Language), req.Text)
	if req.Context != "" {
		prompt += "\n\nContext: " + req.Context
	}
	return prompt
}

type issuePayload struct {
	Issues []struct {
		Type       string `json:"type"`
		Original   string `json:"original"`
		Suggestion string `json:"suggestion"`
		Reason     string `json:"reason"`
		Start      *int   `json:"start"`
		End        *int   `json:"end"`
		Severity   string `json:"severity"`
	} `json:"issues"`
}

// parseIssues decodes the model response and keeps only issues whose span
// can be verified against the input. Offsets that do not line up with the
// quoted original are re-anchored to its first occurrence; unlocatable
// issues are dropped rather than reported with bogus offsets.
func parseIssues(response, text string) ([]term.Issue, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	var payload issuePayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &payload); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	runes := []rune(text)
	var issues []term.Issue
	for _, raw := range payload.Issues {
		if raw.Original == "" || raw.Suggestion == "" {
			continue
		}
		start, end, ok := locateSpan(runes, text, raw.Original, raw.Start, raw.End)
		if !ok {
			continue
		}
		severity := term.Severity(raw.Severity)
		switch severity {
		case term.SeverityInfo, term.SeverityWarning, term.SeverityError:
		default:
			severity = term.SeverityWarning
		}
		issueType := raw.Type
		if issueType == "" {
			issueType = term.TypeSuggestion
		}
		issues = append(issues, term.Issue{
			Type:       issueType,
			Original:   raw.Original,
			Suggestion: raw.Suggestion,
			Reason:     raw.Reason,
			Start:      start,
			End:        end,
			Severity:   severity,
			Source:     term.SourceAI,
		})
	}
	return issues, nil
}

func locateSpan(runes []rune, text, original string, start, end *int) (int, int, bool) {
	if start != nil && end != nil {
		s, e := *start, *end
		if s >= 0 && e <= len(runes) && s < e && string(runes[s:e]) == original {
			return s, e, true
		}
	}
	byteIdx := strings.Index(text, original)
	if byteIdx < 0 {
		return 0, 0, false
	}
	s := utf8.RuneCountInString(text[:byteIdx])
	return s, s + utf8.RuneCountInString(original), true
}
