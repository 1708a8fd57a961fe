// Package ingest は、PDF文書からテキストを取り出す取り込み工程を提供します。
// 埋め込みテキストの抽出を基本とし、スキャン画像と判定したページだけ
// OCR に切り替えます。
package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/shouni/go-comic-kit/pkg/textnorm"
)

// ScannedTextThreshold は、埋め込みテキストがこの文字数に満たないページを
// スキャン画像とみなす閾値です。
const ScannedTextThreshold = 100

// ErrOCRNotEnabled は、OCRなしでビルドされたバイナリでOCRを要求した
// ことを表します。`ocr` ビルドタグを付けると実体が組み込まれます。
var ErrOCRNotEnabled = errors.New("ingest: OCRは無効です (`-tags ocr` でビルドしてください)")

// OCRReader は画像データからテキストを認識する契約です。
type OCRReader interface {
	RecognizeImage(imageData []byte) (string, error)
	Close() error
}

// PageRasterizer はPDFの1ページを画像データに変換する契約です。
// OCRの前段として使います。
type PageRasterizer interface {
	Rasterize(pdfPath string, pageNumber int) ([]byte, error)
}

// Ingestor はPDFをページ単位で読み取り、1本のテキストへ連結します。
type Ingestor struct {
	ocr        OCRReader
	rasterizer PageRasterizer
}

// Option は Ingestor の構成を調整します。
type Option func(*Ingestor)

// WithOCR はスキャンページ向けのOCR読み取り器とページ画像化器を設定します。
// どちらかが欠けるとOCRは行われず、抽出できた分だけで劣化します。
func WithOCR(ocr OCRReader, rasterizer PageRasterizer) Option {
	return func(in *Ingestor) {
		in.ocr = ocr
		in.rasterizer = rasterizer
	}
}

// New は新しい Ingestor を生成します。
func New(opts ...Option) *Ingestor {
	in := &Ingestor{}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// ProcessPDF はPDFの全ページからテキストを取り出し、ページ区切りマーカーで
// 連結して返します。個々のページの失敗は空テキストとして扱い、文書全体は
// 処理を続けます。
func (in *Ingestor) ProcessPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("PDFを開けなかったのだ: %w", err)
	}
	defer f.Close()

	totalPages := r.NumPage()
	slog.Info("PDFの取り込みを開始します", "path", path, "pages", totalPages)

	pages := make([]string, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text := extractPageText(r, pageNum)

		if isScannedText(text) {
			slog.Info("スキャンページと判定したためOCRを試みます",
				"page", pageNum, "embedded_chars", len(strings.TrimSpace(text)))
			if ocrText, err := in.ocrPage(path, pageNum); err != nil {
				slog.Warn("OCRに失敗したため埋め込みテキストのみ使用します",
					"page", pageNum, "error", err)
			} else {
				text = ocrText
			}
		}
		pages = append(pages, text)
	}

	slog.Info("PDFの取り込みが完了したのだ", "pages", totalPages)
	return JoinPages(pages), nil
}

// extractPageText は1ページ分の埋め込みテキストを取り出します。
// 失敗は空文字として吸収します。
func extractPageText(r *pdf.Reader, pageNum int) string {
	p := r.Page(pageNum)
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		slog.Warn("ページのテキスト抽出に失敗しました", "page", pageNum, "error", err)
		return ""
	}
	return text
}

func (in *Ingestor) ocrPage(path string, pageNum int) (string, error) {
	if in.ocr == nil {
		return "", ErrOCRNotEnabled
	}
	if in.rasterizer == nil {
		return "", errors.New("ingest: ページ画像化器が設定されていません")
	}

	imageData, err := in.rasterizer.Rasterize(path, pageNum)
	if err != nil {
		return "", fmt.Errorf("ページの画像化に失敗したのだ: %w", err)
	}
	text, err := in.ocr.RecognizeImage(imageData)
	if err != nil {
		return "", fmt.Errorf("OCRの実行に失敗したのだ: %w", err)
	}
	return text, nil
}

// isScannedText は、埋め込みテキストが閾値未満のページをスキャンと判定します。
func isScannedText(text string) bool {
	return len(strings.TrimSpace(text)) < ScannedTextThreshold
}

// JoinPages はページごとのテキストを区切りマーカーで連結します。
// マーカーは後段の整形工程 (textnorm) が取り除きます。
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n\n"+textnorm.PageBreakMarker+"\n\n")
}

// SplitPages は JoinPages で連結した文書をページ単位に戻します。
func SplitPages(doc string) []string {
	return strings.Split(doc, "\n\n"+textnorm.PageBreakMarker+"\n\n")
}
