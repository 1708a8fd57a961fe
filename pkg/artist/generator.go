package artist

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	_ "image/jpeg"
	_ "image/png"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	imagekit "github.com/shouni/gemini-image-kit/pkg/generator"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// PanelAspectRatio はコマ画像の生成比率です。組版時にセルへ引き伸ばす
// 前提なので厳密な一致は要求しません。
const PanelAspectRatio = "1:1"

// PanelGenerator は、1シーン分のコマ画像を得る契約です。
type PanelGenerator interface {
	GeneratePanel(ctx context.Context, scene domain.Scene, style string) (image.Image, error)
}

// GeminiPanelGenerator は gemini-image-kit を使う PanelGenerator の実体です。
type GeminiPanelGenerator struct {
	imgGen imagekit.ImageGenerator
	seed   *int64
}

// NewGeminiPanelGenerator は新しい GeminiPanelGenerator を生成します。
// seed に正の値を渡すと全コマで同じシードを使い、画風の揺れを抑えます。
func NewGeminiPanelGenerator(imgGen imagekit.ImageGenerator, seed int64) *GeminiPanelGenerator {
	g := &GeminiPanelGenerator{imgGen: imgGen}
	if seed > 0 {
		g.seed = &seed
	}
	return g
}

// GeneratePanel はシーンの描写と画風からコマ画像を生成し、デコード済みの
// 画像として返します。
func (g *GeminiPanelGenerator) GeneratePanel(ctx context.Context, scene domain.Scene, style string) (image.Image, error) {
	prompt := BuildPanelPrompt(scene.ImagePrompt, StyleKeywords(style))

	resp, err := g.imgGen.GenerateMangaPanel(ctx, imagedom.ImageGenerationRequest{
		Prompt:         prompt,
		NegativePrompt: NegativePanelPrompt,
		Seed:           g.seed,
		AspectRatio:    PanelAspectRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("コマ画像の生成に失敗したのだ: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(resp.Data))
	if err != nil {
		return nil, fmt.Errorf("生成画像 (%s) のデコードに失敗したのだ: %w", resp.MimeType, err)
	}
	return img, nil
}

// placeholderSize は代替画像の一辺です。組版時にセル寸法へ引き伸ばされます。
const placeholderSize = 512

// Placeholder は生成に失敗したコマの代わりに差し込む無地の画像を返します。
// ページ全体を落とすより、1コマの欠けとして劣化させる方針です。
func Placeholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))
	gray := color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	for y := 0; y < placeholderSize; y++ {
		for x := 0; x < placeholderSize; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}
