package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/internal/pipeline"
)

// scriptCmd は、台本の生成と保存だけを実行するのだ。
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "PDFから台本JSONだけを生成しますなのだ。",
	Long: `PDFのテキスト抽出と台本生成だけを行い、結果をJSONで保存するのだ。
内容を確認・編集してから compose コマンドで画像生成に進めるのだよ。`,
	RunE: scriptCommand,
}

func scriptCommand(cmd *cobra.Command, args []string) error {
	if opts.InputFile == "" {
		return fmt.Errorf("変換対象のPDF（--input-file）を指定してほしいのだ")
	}

	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.Options = opts

	return pipeline.ExecuteScriptOnly(cmd.Context(), cfg)
}
