package llm

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
)

// GeminiGenerator は gemini.GenerativeModel を TextGenerator に適合させます。
// 使用するモデル名はアダプタ側で固定し、呼び出し元はプロンプトだけを渡します。
type GeminiGenerator struct {
	client gemini.GenerativeModel
	model  string
}

// NewGeminiGenerator は新しいアダプタを生成します。
func NewGeminiGenerator(client gemini.GenerativeModel, model string) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model}
}

// GenerateText は TextGenerator を実装します。
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.GenerateContent(ctx, prompt, g.model)
	if err != nil {
		return "", fmt.Errorf("Gemini API の呼び出しに失敗したのだ: %w", err)
	}
	return resp.Text, nil
}
