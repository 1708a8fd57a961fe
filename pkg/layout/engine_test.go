package layout

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/fogleman/gg"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	if err != nil {
		t.Fatalf("組版器の初期化に失敗: %v", err)
	}
	return e
}

// solidImage は単色のテスト用コマ画像を返します。
func solidImage(c color.RGBA, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func testScenario(texts ...string) domain.Scenario {
	sc := domain.Scenario{Title: "Test Page"}
	for _, txt := range texts {
		sc.Scenes = append(sc.Scenes, domain.Scene{
			ImagePrompt: "prompt",
			Dialogue:    domain.NewText(txt),
		})
	}
	return sc
}

func rgbaPix(t *testing.T, img image.Image) []byte {
	t.Helper()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		t.Fatalf("RGBA画像を想定していました: %T", img)
	}
	return rgba.Pix
}

func TestEngine_Compose(t *testing.T) {
	e := newTestEngine(t)

	t.Run("画像が無ければ白紙のページを返す", func(t *testing.T) {
		page, err := e.Compose(testScenario(), nil)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		b := page.Bounds()
		if b.Dx() != PageWidth || b.Dy() != PageHeight {
			t.Errorf("ページ寸法 = %dx%d, want %dx%d", b.Dx(), b.Dy(), PageWidth, PageHeight)
		}
		if got := page.At(PageWidth/2, PageHeight/2); !isWhite(got) {
			t.Errorf("中央は白の想定です: %v", got)
		}
	})

	t.Run("コマの単色はページ上に現れる", func(t *testing.T) {
		blue := color.RGBA{R: 0, G: 0, B: 255, A: 255}
		page, err := e.Compose(testScenario(""), []image.Image{solidImage(blue, 40, 40)})
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if !containsColor(page, blue) {
			t.Error("引き伸ばされたコマの色が見つかりません")
		}
	})

	t.Run("同じ入力からは同じページが得られる", func(t *testing.T) {
		red := color.RGBA{R: 255, G: 0, B: 0, A: 255}
		sc := testScenario("Hello there, reader!")
		panels := []image.Image{solidImage(red, 64, 64)}

		first, err := e.Compose(sc, panels)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		second, err := e.Compose(sc, panels)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if !bytes.Equal(rgbaPix(t, first), rgbaPix(t, second)) {
			t.Error("組版が決定的ではありません")
		}
	})

	t.Run("テキストの有無でページが変わる", func(t *testing.T) {
		red := color.RGBA{R: 255, G: 0, B: 0, A: 255}
		panels := []image.Image{solidImage(red, 64, 64)}

		withText, err := e.Compose(testScenario("Some dialogue."), panels)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		withoutText, err := e.Compose(testScenario(""), panels)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}
		if bytes.Equal(rgbaPix(t, withText), rgbaPix(t, withoutText)) {
			t.Error("テキストボックスが描画されていません")
		}
	})

	t.Run("テキストのあるコマだけにテキストボックスが付く", func(t *testing.T) {
		red := color.RGBA{R: 255, A: 255}
		green := color.RGBA{G: 255, A: 255}
		blue := color.RGBA{B: 255, A: 255}
		sc := domain.Scenario{Title: "Counting Page", Scenes: []domain.Scene{
			{ImagePrompt: "p1", Dialogue: domain.NewText("First line.")},
			{ImagePrompt: "p2"},
			{ImagePrompt: "p3", Caption: "A caption."},
		}}
		panels := []image.Image{
			solidImage(red, 32, 32),
			solidImage(green, 32, 32),
			solidImage(blue, 32, 32),
		}

		page, err := e.Compose(sc, panels)
		if err != nil {
			t.Fatalf("予期しないエラー: %v", err)
		}

		// Compose と同じ手順でセル座標を割り出す
		scratch := gg.NewContext(PageWidth, PageHeight)
		gridTop := e.drawTitle(scratch, sc.Title) + Padding
		panelWidth := (PageWidth - 3*Padding) / 2
		panelHeight := (PageHeight - gridTop - 3*Padding) / 2
		positions := [4]image.Point{
			{X: Padding, Y: gridTop},
			{X: 2*Padding + panelWidth, Y: gridTop},
			{X: Padding, Y: gridTop + panelHeight + Padding},
			{X: 2*Padding + panelWidth, Y: gridTop + panelHeight + Padding},
		}

		// 帯の下端近くを突くと、ボックスがあれば白地、なければコマの色が残る
		boxes := 0
		for i := 0; i < 3; i++ {
			x := positions[i].X + panelWidth/2
			y := positions[i].Y + panelHeight - textBoxInset - textBoxBorder - 4
			if isWhite(page.At(x, y)) {
				boxes++
			}
		}
		if boxes != 2 {
			t.Errorf("テキストボックスの数 = %d, want 2", boxes)
		}

		// コマの上辺中央は枠線で黒くなる
		borders := 0
		for i := 0; i < 3; i++ {
			if isBlack(page.At(positions[i].X+panelWidth/2, positions[i].Y)) {
				borders++
			}
		}
		if borders != 3 {
			t.Errorf("枠線のあるコマの数 = %d, want 3", borders)
		}
		if !isWhite(page.At(positions[3].X+panelWidth/2, positions[3].Y)) {
			t.Error("空きスロットには枠線を描かない想定です")
		}
	})

	t.Run("5枚目以降のコマは無視される", func(t *testing.T) {
		red := color.RGBA{R: 255, G: 0, B: 0, A: 255}
		panels := make([]image.Image, 6)
		for i := range panels {
			panels[i] = solidImage(red, 32, 32)
		}
		if _, err := e.Compose(testScenario("a", "b", "c", "d", "e", "f"), panels); err != nil {
			t.Fatalf("余剰コマはエラーにしない想定です: %v", err)
		}
	})
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0 && g == 0 && b == 0
}

func containsColor(img image.Image, want color.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(bl>>8) == want.B {
				return true
			}
		}
	}
	return false
}

func TestEngine_fitText(t *testing.T) {
	e := newTestEngine(t)
	dc := gg.NewContext(PageWidth, PageHeight)

	t.Run("短いテキストは最大サイズで収まる", func(t *testing.T) {
		size, lines := e.fitText(dc, "Hi!", 400, 80)
		if size != MaxTextFontSize {
			t.Errorf("サイズ = %v, want %v", size, MaxTextFontSize)
		}
		if len(lines) != 1 {
			t.Errorf("行数 = %d, want 1", len(lines))
		}
	})

	t.Run("長いテキストはサイズが下がる", func(t *testing.T) {
		long := strings.Repeat("adaptive font fitting trades size against wrap width ", 4)
		size, lines := e.fitText(dc, long, 300, 70)
		if size >= MaxTextFontSize {
			t.Errorf("サイズが下がる想定です: %v", size)
		}
		if len(lines) < 2 {
			t.Errorf("複数行になる想定です: %d", len(lines))
		}
	})

	t.Run("収まらなくても下限サイズで打ち切る", func(t *testing.T) {
		long := strings.Repeat("overflow is tolerated at the floor size ", 20)
		size, lines := e.fitText(dc, long, 100, 20)
		if size != MinTextFontSize {
			t.Errorf("サイズ = %v, want %v", size, MinTextFontSize)
		}
		if len(lines) == 0 {
			t.Error("行が返る想定です")
		}
	})

	t.Run("明示的な改行は段落として保たれる", func(t *testing.T) {
		_, lines := e.fitText(dc, "one\ntwo", 400, 200)
		if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
			t.Errorf("段落分割が保たれていません: %v", lines)
		}
	})
}

func TestWrapByRuneCount(t *testing.T) {
	cases := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{"1行に収まる", "short title", 20, []string{"short title"}},
		{"語境界で折り返す", "one two three four", 9, []string{"one two", "three", "four"}},
		{"上限より長い単語はそのまま1行", "extraordinarily long", 5, []string{"extraordinarily", "long"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := wrapByRuneCount(tc.text, tc.maxChars)
			if len(got) != len(tc.want) {
				t.Fatalf("行数 = %d, want %d (%v)", len(got), len(tc.want), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("行 %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
