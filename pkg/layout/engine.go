// Package layout は、コマ画像と脚本テキストを1枚のコミックページに組版します。
// 入力に対して決定的に動作し、描画以外の副作用を持ちません。
package layout

import (
	"fmt"
	"image"
	"os"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// ページの寸法と余白です。座標系は左上原点の論理ピクセルです。
const (
	PageWidth  = 850
	PageHeight = 1100
	Padding    = 25

	TitleFontSize = 30
	// titleWidthFactor はタイトル折り返しに使う近似文字幅の係数です。
	// 実測ではなく fontSize × 係数 で1文字分の幅を見積もります。
	titleWidthFactor = 0.6

	panelBorderWidth = 4
	// fallbackPanelHeight は計算上コマの高さが潰れた場合の最低保証です。
	fallbackPanelHeight = 200

	// テキストボックスはコマの下端に寄せた帯です。
	textBoxBand    = 90
	textBoxInset   = 5
	textBoxPadding = 10
	textBoxBorder  = 2

	lineSpacing = 1.2
)

// Engine はフォントを保持するページ組版器です。
type Engine struct {
	font *truetype.Font
}

// NewEngine は同梱の Go Regular フォントで組版器を生成します。
func NewEngine() (*Engine, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("同梱フォントの解析に失敗したのだ: %w", err)
	}
	return &Engine{font: f}, nil
}

// NewEngineFromFile は任意の TTF ファイルで組版器を生成します。
// キリル文字など同梱フォントに無いグリフが必要な場合に使います。
func NewEngineFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("フォントファイルの読み込みに失敗したのだ: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("フォント '%s' の解析に失敗したのだ: %w", path, err)
	}
	return &Engine{font: f}, nil
}

func (e *Engine) face(size float64) font.Face {
	return truetype.NewFace(e.font, &truetype.Options{Size: size})
}

// Compose は脚本1ページ分とコマ画像を組み合わせてページ画像を生成します。
// 画像が1枚も無い場合は白紙のページを返します。コマ数が4を超える分は
// 無視されます。
func (e *Engine) Compose(scenario domain.Scenario, panels []image.Image) (image.Image, error) {
	dc := gg.NewContext(PageWidth, PageHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if len(panels) == 0 {
		return dc.Image(), nil
	}

	titleBottom := e.drawTitle(dc, scenario.Title)

	gridTop := titleBottom + Padding
	panelWidth := (PageWidth - 3*Padding) / 2
	panelHeight := (PageHeight - gridTop - 3*Padding) / 2
	if panelHeight <= 0 {
		panelHeight = fallbackPanelHeight
	}

	positions := [4]image.Point{
		{X: Padding, Y: gridTop},
		{X: 2*Padding + panelWidth, Y: gridTop},
		{X: Padding, Y: gridTop + panelHeight + Padding},
		{X: 2*Padding + panelWidth, Y: gridTop + panelHeight + Padding},
	}

	for i, panel := range panels {
		if i >= len(positions) {
			break
		}
		if panel == nil {
			continue
		}
		pos := positions[i]
		e.drawPanel(dc, panel, pos, panelWidth, panelHeight)

		if i < len(scenario.Scenes) {
			if text := scenario.Scenes[i].DisplayText(); text != "" {
				e.drawTextBox(dc, text, pos, panelWidth, panelHeight)
			}
		}
	}

	return dc.Image(), nil
}

// drawTitle はタイトルを折り返して描画し、その下端のY座標を返します。
// 折り返し幅は近似文字幅モデルで決めるため、タイトルの高さは行数に応じて
// 変わります。
func (e *Engine) drawTitle(dc *gg.Context, title string) int {
	if title == "" {
		title = "My Comic"
	}

	usableWidth := float64(PageWidth - 2*Padding)
	maxChars := int(usableWidth / (TitleFontSize * titleWidthFactor))
	if maxChars < 1 {
		maxChars = 1
	}
	lines := wrapByRuneCount(title, maxChars)

	dc.SetFontFace(e.face(TitleFontSize))
	dc.SetRGB(0, 0, 0)

	lineHeight := dc.FontHeight() * lineSpacing
	for i, line := range lines {
		baseline := float64(Padding) + float64(i)*lineHeight + dc.FontHeight()
		dc.DrawString(line, Padding, baseline)
	}

	return Padding + int(float64(len(lines))*lineHeight)
}

// drawPanel はコマ画像をセル寸法に引き伸ばして貼り付け、枠線を描きます。
// アスペクト比は保持しません。セルを埋める仕様です。
func (e *Engine) drawPanel(dc *gg.Context, panel image.Image, pos image.Point, w, h int) {
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), panel, panel.Bounds(), xdraw.Src, nil)
	dc.DrawImage(scaled, pos.X, pos.Y)

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(panelBorderWidth)
	dc.DrawRectangle(float64(pos.X), float64(pos.Y), float64(w), float64(h))
	dc.Stroke()
}

// drawTextBox はコマ下端の帯に白地のボックスを描き、フォントサイズを
// 合わせ込んだテキストを流し込みます。
func (e *Engine) drawTextBox(dc *gg.Context, text string, pos image.Point, w, h int) {
	boxX := float64(pos.X + textBoxInset)
	boxY := float64(pos.Y + h - textBoxBand)
	boxW := float64(w - 2*textBoxInset)
	boxH := float64(textBoxBand - textBoxInset)

	usableW := boxW - 2*textBoxPadding
	usableH := boxH - 2*textBoxPadding

	size, lines := e.fitText(dc, text, usableW, usableH)

	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(boxX, boxY, boxW, boxH)
	dc.FillPreserve()
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(textBoxBorder)
	dc.Stroke()

	dc.SetFontFace(e.face(size))
	lineHeight := dc.FontHeight() * lineSpacing
	for i, line := range lines {
		baseline := boxY + textBoxPadding + float64(i)*lineHeight + dc.FontHeight()
		dc.DrawString(line, boxX+textBoxPadding, baseline)
	}
}
