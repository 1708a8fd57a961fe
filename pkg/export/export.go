// Package export は、組版済みページ画像のファイル化 (PNG / PDF) と
// 保存先への書き出しを担当します。
package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"path"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-comic-kit/pkg/layout"
)

const (
	mimePNG = "image/png"
	mimePDF = "application/pdf"
)

// PageFilename はページ番号とスタイル名から保存用ファイル名を組み立てます。
func PageFilename(pageNum int, style string) string {
	return fmt.Sprintf("comic_page_%d_%s.png", pageNum, strings.ReplaceAll(style, " ", "_"))
}

// EncodePNG はページ画像をPNGバイト列に変換します。
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("PNGエンコードに失敗したのだ: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePDF は複数ページの画像を1つのPDFに束ねてバイト列で返します。
// ページはキャンバスの論理ピクセルをポイントに1:1で対応させた寸法で
// 追加されるため、拡縮による画質劣化はありません。
func EncodePDF(pages []image.Image) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("PDF化するページがありません")
	}

	size := gofpdf.SizeType{Wd: layout.PageWidth, Ht: layout.PageHeight}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           size,
		OrientationStr: "",
	})
	pdf.SetTitle("Comic", false)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	for i, page := range pages {
		data, err := EncodePNG(page)
		if err != nil {
			return nil, fmt.Errorf("ページ %d の変換に失敗したのだ: %w", i+1, err)
		}

		pdf.AddPageFormat("", size)
		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		pdf.ImageOptions(name, 0, 0, layout.PageWidth, layout.PageHeight, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDFの出力に失敗したのだ: %w", err)
	}
	return buf.Bytes(), nil
}

// Publisher は remoteio の書き出し口にページを保存します。
// ローカルパスと gs:// の両方を透過的に扱えます。
type Publisher struct {
	writer remoteio.OutputWriter
	outDir string
}

// NewPublisher は新しい Publisher を生成します。
func NewPublisher(writer remoteio.OutputWriter, outDir string) *Publisher {
	return &Publisher{writer: writer, outDir: outDir}
}

// WritePNG は1ページ分のPNGを保存し、保存先パスを返します。
func (p *Publisher) WritePNG(ctx context.Context, filename string, img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	outPath := path.Join(p.outDir, filename)
	if err := p.writer.Write(ctx, outPath, bytes.NewReader(data), mimePNG); err != nil {
		return "", fmt.Errorf("PNGの書き出しに失敗したのだ: %w", err)
	}
	return outPath, nil
}

// WritePDF は全ページを1つのPDFに束ねて保存し、保存先パスを返します。
func (p *Publisher) WritePDF(ctx context.Context, filename string, pages []image.Image) (string, error) {
	data, err := EncodePDF(pages)
	if err != nil {
		return "", err
	}
	outPath := path.Join(p.outDir, filename)
	if err := p.writer.Write(ctx, outPath, bytes.NewReader(data), mimePDF); err != nil {
		return "", fmt.Errorf("PDFの書き出しに失敗したのだ: %w", err)
	}
	return outPath, nil
}
