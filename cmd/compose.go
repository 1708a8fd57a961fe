package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/internal/pipeline"
)

// composeCmd は、保存済みの台本JSONから画像生成と組版を実行するのだ。
var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "台本JSONからコミックページを組み上げますなのだ。",
	Long: `script コマンド（または generate）で保存した台本JSONを読み込み、
コマ画像の生成とページの組版、保存を実行するのだ。`,
	RunE: composeCommand,
}

func composeCommand(cmd *cobra.Command, args []string) error {
	// フラグで明示されなかった場合は、台本JSONに保存された画風を優先するのだ
	if !cmd.Flags().Changed("style") {
		opts.Style = ""
	}

	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts

	return pipeline.ExecuteComposeOnly(cmd.Context(), cfg)
}
