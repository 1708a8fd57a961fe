package cmd

import (
	"fmt"
	"os"
	"strings"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/artist"
)

// opts は、各サブコマンドで共有する実行時パラメータなのだ。
var opts config.GenerateOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.InputFile, "input-file", "f", "", "変換対象のPDFファイルのパスなのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ScriptFile, "script-file", config.DefaultScriptFile, "台本JSONの保存先または読み込み元なのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "ページ画像の保存先（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.PDFFile, "pdf-file", "", "指定すると全ページを1つのPDFにも束ねるのだ。")

	// --- コミック生成パラメータ ---
	rootCmd.PersistentFlags().StringVarP(&opts.Style, "style", "s", artist.StyleManga,
		fmt.Sprintf("画風プリセット（%s）なのだ。", strings.Join(artist.StyleNames(), " / ")))
	rootCmd.PersistentFlags().StringVarP(&opts.Audience, "audience", "a", config.DefaultAudience, "想定読者なのだ。")
	rootCmd.PersistentFlags().IntVarP(&opts.Pages, "pages", "p", config.DefaultPageCount,
		fmt.Sprintf("生成するページ数の上限（%d〜%d）なのだ。", config.MinPageCount, config.MaxPageCount))
	rootCmd.PersistentFlags().BoolVar(&opts.ConsistentCharacters, "consistent-characters", false, "全ページ共通のキャラクター表を使うのだ。")
	rootCmd.PersistentFlags().Int64Var(&opts.Seed, "seed", config.SeedUnset, "画像生成のシード値（未指定なら毎回変わる）なのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultModel, "使用する Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成用の Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageBackendURL, "image-backend", "", "非同期ジョブ方式の画像バックエンドURL（指定時はGeminiの代わりに使う）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.FontFile, "font", "", "組版に使うTTFフォントのパス（キリル文字などが必要な場合）なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	// 外部の画像バックエンドを使う場合も、台本生成にはGeminiを使うのだ。
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return opts.Validate()
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"go-comic-kit",
		addAppFlags,
		preRunAppE,
		generateCmd,
		scriptCmd,
		composeCmd,
	)
}
