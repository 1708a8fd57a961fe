// Package pipeline は、取り込み → 台本 → コマ画像 → 組版 → 保存という
// 一連の工程を束ねる実行層なのだ。
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"

	"github.com/shouni/go-comic-kit/internal/builder"
	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/artist"
	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/session"
)

const mimeJSON = "application/json"

// Execute は、PDFから完成ページまでの全工程を実行するのだ。
func Execute(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	script, err := generateScript(ctx, appCtx)
	if err != nil {
		return err
	}

	// 途中からやり直せるように、台本は常に保存しておくのだ
	if err := saveScript(ctx, appCtx, script); err != nil {
		slog.Warn("台本の保存に失敗しましたが処理は続行します", "error", err)
	}

	return renderAndPublish(ctx, appCtx, script)
}

// ExecuteScriptOnly は、台本の生成と保存だけを実行するのだ（Phase 1）。
// 画像生成は行わないため、台本の内容を確認・編集してから
// ExecuteComposeOnly で続きを実行できる。
func ExecuteScriptOnly(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	script, err := generateScript(ctx, appCtx)
	if err != nil {
		return err
	}

	if err := saveScript(ctx, appCtx, script); err != nil {
		return err
	}
	slog.Info("台本の生成が完了したのだ", "path", appCtx.Options.ScriptFile, "pages", len(script.Scenarios))
	return nil
}

// ExecuteComposeOnly は、保存済みの台本JSONを読み込み、画像生成から
// 保存までを実行するのだ（Phase 2 & 3）。
func ExecuteComposeOnly(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	rc, err := appCtx.Reader.Open(ctx, appCtx.Options.ScriptFile)
	if err != nil {
		return fmt.Errorf("台本 '%s' の読み込みに失敗しました: %w", appCtx.Options.ScriptFile, err)
	}
	defer rc.Close()

	var script domain.ComicScript
	if err := json.NewDecoder(rc).Decode(&script); err != nil {
		return fmt.Errorf("台本 '%s' のデコードに失敗しました: %w", appCtx.Options.ScriptFile, err)
	}

	// 台本に画風が残っていればフラグ未指定時の既定として使うのだ
	if script.Style != "" && appCtx.Options.Style == "" {
		appCtx.Options.Style = script.Style
	}
	if appCtx.Options.Style == "" {
		appCtx.Options.Style = artist.StyleManga
	}

	return renderAndPublish(ctx, appCtx, &script)
}

// generateScript はPDFの取り込みと台本生成を実行するのだ。
func generateScript(ctx context.Context, appCtx *builder.AppContext) (*domain.ComicScript, error) {
	scriptRunner, err := builder.BuildScriptRunner(appCtx)
	if err != nil {
		return nil, fmt.Errorf("ScriptRunnerの構築に失敗したのだ: %w", err)
	}

	script, err := scriptRunner.Run(ctx, appCtx.Options.InputFile)
	if err != nil {
		return nil, err
	}
	if len(script.Scenarios) == 0 {
		return nil, fmt.Errorf("台本を1ページも生成できなかったのだ。入力文書を確認してほしいのだ")
	}
	return script, nil
}

// renderAndPublish は台本からコマ画像を生成し、組版して保存するのだ。
func renderAndPublish(ctx context.Context, appCtx *builder.AppContext, script *domain.ComicScript) error {
	panelRunner, err := builder.BuildPanelRunner(appCtx)
	if err != nil {
		return fmt.Errorf("PanelRunnerの構築に失敗したのだ: %w", err)
	}
	engine, err := builder.BuildLayoutEngine(appCtx)
	if err != nil {
		return fmt.Errorf("組版エンジンの構築に失敗したのだ: %w", err)
	}

	sess := session.New(appCtx.Options.Style)
	for i, scenario := range script.Scenarios {
		if !scenario.Usable() {
			slog.Warn("シーンのないページをスキップします", "page", i+1, "title", scenario.Title)
			continue
		}

		slog.Info("ページのコマ画像を生成するのだ",
			"page", i+1, "total", len(script.Scenarios), "title", scenario.Title)
		panels := panelRunner.Run(ctx, scenario, appCtx.Options.Style)
		sess.AddPage(scenario, panels)
	}

	if sess.PageCount() == 0 {
		return fmt.Errorf("組版できるページがないのだ")
	}

	finals, err := sess.CommitFinalPages(ctx, engine)
	if err != nil {
		return err
	}

	publisher := builder.BuildPublisherRunner(appCtx)
	if err := publisher.Run(ctx, finals); err != nil {
		return err
	}

	slog.Info("すべてのページが完成したのだ！", "pages", len(finals), "output", appCtx.Options.OutputDir)
	return nil
}

// saveScript は台本JSONを保存先へ書き出すのだ。
func saveScript(ctx context.Context, appCtx *builder.AppContext, script *domain.ComicScript) error {
	data, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return fmt.Errorf("台本のエンコードに失敗したのだ: %w", err)
	}
	if err := appCtx.Writer.Write(ctx, appCtx.Options.ScriptFile, bytes.NewReader(data), mimeJSON); err != nil {
		return fmt.Errorf("台本の保存に失敗したのだ: %w", err)
	}
	return nil
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	timeout := cfg.Options.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	httpClient := httpkit.New(timeout)

	aiClient, err := builder.InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create ai client: %w", err)
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	appCtx := builder.NewAppContext(cfg, httpClient, aiClient, reader, writer)
	return &appCtx, nil
}
