package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/internal/pipeline"
)

// generateCmd は、PDFから完成ページまでの全工程を実行するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "PDF文書をコミックページに変換しますなのだ。",
	Long: `PDFからテキストを取り出し、台本の生成、コマ画像の生成、ページの組版までを
一気に実行するのだ。出力は台本JSONとページ画像（PNG、任意でPDF）になるのだよ。`,
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.InputFile == "" {
		return fmt.Errorf("変換対象のPDF（--input-file）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts

	slog.Info("コミック生成パイプラインを起動するのだ！",
		"input", opts.InputFile,
		"style", opts.Style,
		"pages", opts.Pages,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output", opts.OutputDir)

	if err := pipeline.Execute(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}
