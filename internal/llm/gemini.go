package llm

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// GeminiProvider calls the Gemini generateContent REST endpoint.
type GeminiProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		httpClient: newHTTPClient(),
	}
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) headers() map[string]string {
	return map[string]string{"x-goog-api-key": g.apiKey}
}

func (g *GeminiProvider) Ping(ctx context.Context) error {
	return ping(ctx, g.httpClient, g.Name(), g.baseURL+"/models", g.headers())
}

// endpoint returns the generateContent URL for model.
func (g *GeminiProvider) endpoint(model string) string {
	model = strings.TrimPrefix(model, "models/")
	return g.baseURL + "/models/" + url.PathEscape(model) + ":generateContent"
}

type geminiRequest struct {
	SystemInstruction *geminiContent        `json:"systemInstruction,omitempty"`
	Contents          []geminiContent       `json:"contents"`
	GenerationConfig  *geminiGenerationConf `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConf struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (g *GeminiProvider) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	system, rest := splitSystem(req.Messages)

	apiReq := geminiRequest{
		GenerationConfig: &geminiGenerationConf{
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if system != "" {
		apiReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	if req.Temperature != 0 {
		t := req.Temperature
		apiReq.GenerationConfig.Temperature = &t
	}
	if req.TopP != 0 {
		p := req.TopP
		apiReq.GenerationConfig.TopP = &p
	}
	if req.JSON {
		apiReq.GenerationConfig.ResponseMimeType = "application/json"
	}

	for _, m := range rest {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		parts := []geminiPart{{Text: m.Content}}
		for _, img := range m.Images {
			parts = append(parts, geminiPart{
				InlineData: &geminiInlineData{MimeType: img.MIMEType, Data: img.Base64()},
			})
		}
		apiReq.Contents = append(apiReq.Contents, geminiContent{Role: role, Parts: parts})
	}

	var apiResp geminiResponse
	if err := postJSON(ctx, g.httpClient, g.Name(), g.endpoint(model), g.headers(), apiReq, &apiResp); err != nil {
		return nil, err
	}

	if len(apiResp.Candidates) == 0 {
		msg := "no candidates in response"
		if apiResp.PromptFeedback != nil && apiResp.PromptFeedback.BlockReason != "" {
			msg = "prompt blocked: " + apiResp.PromptFeedback.BlockReason
		}
		return nil, responseError(g.Name(), msg, nil)
	}

	candidate := apiResp.Candidates[0]
	var text strings.Builder
	for _, p := range candidate.Content.Parts {
		text.WriteString(p.Text)
	}

	return &CompletionResponse{
		Content:      text.String(),
		Model:        model,
		FinishReason: candidate.FinishReason,
		Usage: Usage{
			PromptTokens:     apiResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: apiResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      apiResp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}
