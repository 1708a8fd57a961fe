package runner

import (
	"context"
	"image"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/artist"
	"github.com/shouni/go-comic-kit/pkg/domain"
)

// maxConcurrentPanels は1ページ内で同時に走らせる画像生成の上限です。
const maxConcurrentPanels = 4

// PanelRunner は、1シナリオ分のコマ画像を生成するインターフェース。
type PanelRunner interface {
	// Run はシナリオの全シーンの画像を生成し、シーン順のリストを返す。
	Run(ctx context.Context, scenario domain.Scenario, style string) []image.Image
	// Regenerate は1シーンだけを再生成する。
	Regenerate(ctx context.Context, scene domain.Scene, style string) (image.Image, error)
}

// ComicPanelRunner は、流量制限つきの並列実行でコマ画像を生成する実体。
// 同一ページのコマは互いに独立なので、ここが唯一の並列化ポイントなのだ。
type ComicPanelRunner struct {
	generator artist.PanelGenerator
	limiter   *rate.Limiter
}

// NewComicPanelRunner は、ComicPanelRunnerの新しいインスタンスを生成して返す。
func NewComicPanelRunner(generator artist.PanelGenerator) *ComicPanelRunner {
	return &ComicPanelRunner{
		generator: generator,
		// Burst 2 により、開始直後に2枚までは同時にリクエストを開始できるのだ
		limiter: rate.NewLimiter(rate.Every(config.DefaultRateLimit), 2),
	}
}

// Run は並列処理を用いて、各シーンの画像を生成するメインロジックなのだ。
// 失敗したコマは代替画像で埋め、ページ全体は落とさない。位置は常に
// シーン順と一致する。
func (pr *ComicPanelRunner) Run(ctx context.Context, scenario domain.Scenario, style string) []image.Image {
	scenes := scenario.Scenes
	images := make([]image.Image, len(scenes))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentPanels)
	slog.Info("並列コマ生成を開始するのだ",
		"title", scenario.Title, "count", len(scenes), "interval", config.DefaultRateLimit)

	for i, scene := range scenes {
		i, scene := i, scene // ゴルーチンのクロージャ対策なのだ

		eg.Go(func() error {
			// レートリミットに従って、自分の番が来るまで待機するのだ
			if err := pr.limiter.Wait(egCtx); err != nil {
				images[i] = artist.Placeholder()
				return nil
			}

			slog.Info("コマを生成中...", "panel", i+1, "total", len(scenes))
			img, err := pr.generator.GeneratePanel(egCtx, scene, style)
			if err != nil {
				slog.Warn("コマ生成に失敗したため代替画像で埋めます", "panel", i+1, "error", err)
				images[i] = artist.Placeholder()
				return nil
			}

			images[i] = img
			slog.Info("コマ生成に成功したのだ", "panel", i+1)
			return nil
		})
	}

	// 個々の失敗は握りつぶしているため、待機はエラーを返さない
	_ = eg.Wait()
	return images
}

// Regenerate は1シーン分だけを生成し直すのだ。結果の差し替えは呼び出し側
// がセッションに対して行う。
func (pr *ComicPanelRunner) Regenerate(ctx context.Context, scene domain.Scene, style string) (image.Image, error) {
	if err := pr.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return pr.generator.GeneratePanel(ctx, scene, style)
}
