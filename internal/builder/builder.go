package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	imagekit "github.com/shouni/gemini-image-kit/pkg/generator"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/internal/runner"
	"github.com/shouni/go-comic-kit/pkg/artist"
	"github.com/shouni/go-comic-kit/pkg/export"
	"github.com/shouni/go-comic-kit/pkg/ingest"
	"github.com/shouni/go-comic-kit/pkg/layout"
	"github.com/shouni/go-comic-kit/pkg/llm"
	"github.com/shouni/go-comic-kit/pkg/planner"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
	defaultTTL             = 5 * time.Minute
)

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	if apiKey == "" {
		return nil, llm.ErrMissingCredentials
	}

	const defaultGeminiTemperature = float32(0.7)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeImageGenerator は、画像キャッシュを含む ImageGenerator を初期化します。
func InitializeImageGenerator(appCtx *AppContext) (imagekit.ImageGenerator, error) {
	imgCache := cache.New(defaultCacheExpiration, cacheCleanupInterval)
	core, err := imagekit.NewGeminiImageCore(
		appCtx.aiClient,
		appCtx.Reader,
		appCtx.httpClient,
		imgCache,
		defaultTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗しました: %w", err)
	}

	imgGen, err := imagekit.NewGeminiGenerator(appCtx.Config.GeminiImageModel, core)
	if err != nil {
		return nil, fmt.Errorf("GeminiGeneratorの初期化に失敗したのだ: %w", err)
	}
	return imgGen, nil
}

// BuildScriptRunner は、PDF取り込みと台本生成を担当する Runner を構築します。
func BuildScriptRunner(appCtx *AppContext) (runner.ScriptRunner, error) {
	promptBuilder, err := planner.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("プロンプトビルダーの初期化に失敗しました: %w", err)
	}

	invoker := llm.NewInvoker(llm.NewGeminiGenerator(appCtx.aiClient, appCtx.Config.GeminiModel))
	p := planner.New(invoker, promptBuilder, planner.Config{
		PageCount:            appCtx.Options.Pages,
		Style:                appCtx.Options.Style,
		Audience:             appCtx.Options.Audience,
		ConsistentCharacters: appCtx.Options.ConsistentCharacters,
	})

	return runner.NewComicScriptRunner(ingest.New(), p), nil
}

// BuildPanelRunner は、コマ画像生成を担当する Runner を構築します。
// --image-backend の指定があれば非同期ジョブ方式のバックエンドを使い、
// なければ Gemini で直接生成します。
func BuildPanelRunner(appCtx *AppContext) (runner.PanelRunner, error) {
	if url := appCtx.Options.ImageBackendURL; url != "" {
		httpClient := &http.Client{Timeout: appCtx.Options.HTTPTimeout}
		return runner.NewComicPanelRunner(artist.NewRemotePanelGenerator(httpClient, url)), nil
	}

	imgGen, err := InitializeImageGenerator(appCtx)
	if err != nil {
		return nil, err
	}

	var seed int64
	if appCtx.Options.Seed != config.SeedUnset {
		seed = appCtx.Options.Seed
	}
	return runner.NewComicPanelRunner(artist.NewGeminiPanelGenerator(imgGen, seed)), nil
}

// BuildLayoutEngine は組版エンジンを構築します。--font の指定があれば
// そのTTFを、なければ同梱フォントを使います。
func BuildLayoutEngine(appCtx *AppContext) (*layout.Engine, error) {
	if path := appCtx.Options.FontFile; path != "" {
		return layout.NewEngineFromFile(path)
	}
	return layout.NewEngine()
}

// BuildPublisherRunner はページ保存を担当する Runner を構築します。
func BuildPublisherRunner(appCtx *AppContext) runner.PublisherRunner {
	publisher := export.NewPublisher(appCtx.Writer, appCtx.Options.OutputDir)
	return runner.NewDefaultPublisherRunner(publisher, appCtx.Options.PDFFile)
}
