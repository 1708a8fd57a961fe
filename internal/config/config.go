package config

import (
	"fmt"
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel       = "gemini-3-flash-preview"
	DefaultImageModel  = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultRateLimit   = 30 * time.Second // パネル画像生成の最小間隔

	DefaultPageCount = 3
	MinPageCount     = 1
	MaxPageCount     = 5

	DefaultAudience = "children aged 10"

	DefaultScriptFile = "output/comic_script.json" // 台本の既定の保存先なのだ
	DefaultOutputDir  = "output/comics"            // ページ画像の既定の保存先なのだ

	// SeedUnset はシード未指定を表す番兵値です。
	SeedUnset = -1
)

// Config はアプリケーション全体の環境設定（APIキーなど）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	InputFile  string // --input-file: 変換対象のPDF
	ScriptFile string // --script-file: 台本JSONのパス（保存先または読み込み元）

	// 生成結果の出力設定
	OutputDir string // --output-dir: ページ画像の保存先（ローカル or gs://...）
	PDFFile   string // --pdf-file: 指定時は全ページを1つのPDFにも束ねる

	// コミック生成パラメータ
	Style                string // --style: 画風プリセット名
	Audience             string // --audience: 想定読者
	Pages                int    // --pages: 生成するページ数の上限
	ConsistentCharacters bool   // --consistent-characters: 全ページ共通のキャラクター表を使う
	Seed                 int64  // --seed: 画像生成シード（SeedUnset で未指定）

	// AIモデル・挙動設定
	AIModel         string        // --model: テキスト生成用のGeminiモデル
	ImageModel      string        // --image-model: 画像生成用のGeminiモデル
	ImageBackendURL string        // --image-backend: 非同期ジョブ方式のバックエンドURL（指定時はGeminiの代わりに使う）
	FontFile        string        // --font: 組版に使うTTFフォント（キリル文字など）
	HTTPTimeout     time.Duration // --http-timeout
}

// Validate は実行前にパラメータの整合性を確認するのだ。
func (o GenerateOptions) Validate() error {
	if o.Pages < MinPageCount || o.Pages > MaxPageCount {
		return fmt.Errorf("--pages は %d〜%d の範囲で指定してほしいのだ (指定値: %d)",
			MinPageCount, MaxPageCount, o.Pages)
	}
	if o.Seed < SeedUnset {
		return fmt.Errorf("--seed には %d (未指定) か正の値を指定してほしいのだ", SeedUnset)
	}
	return nil
}
