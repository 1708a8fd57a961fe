// Package jsonx は、AIの自由文応答に埋め込まれたJSON値を取り出すのだ。
// モデルの応答には前置きの説明文やMarkdownのコードフェンス、軽微な構文ミスが
// 混ざることが常であり、最初のパース失敗で棄ててしまうと復元可能なデータまで
// 失われてしまいます。そのため厳格パースと修復パースの二段構えを取ります。
package jsonx

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var fencedBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?\\S)\\s*```")

// ExtractionError は、応答からJSON値を特定も修復もできなかったことを表します。
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("JSON抽出に失敗しました: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("JSON抽出に失敗しました: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extract は応答テキストからJSON値を1つ取り出します。優先順位は次の通りです。
//  1. JSONタグ付き（または無印）のコードフェンスがあれば、その中身を使う
//  2. なければ最初の '{' または '[' から、対応する種類の最後の閉じ括弧までを使う
//  3. 厳格パースに失敗した場合は修復パーサで再試行する
func Extract(raw string) (json.RawMessage, error) {
	candidate, err := locate(raw)
	if err != nil {
		return nil, err
	}

	if valid, err := parse(candidate); err == nil {
		return valid, nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, &ExtractionError{Reason: "修復パースにも失敗しました", Err: err}
	}
	valid, err := parse(repaired)
	if err != nil {
		return nil, &ExtractionError{Reason: "修復後のJSONが不正です", Err: err}
	}
	return valid, nil
}

// Unmarshal は Extract の結果を指定の構造体へデコードします。
func Unmarshal(raw string, v any) error {
	value, err := Extract(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(value, v); err != nil {
		return &ExtractionError{Reason: "抽出したJSONが期待する形と一致しません", Err: err}
	}
	return nil
}

// locate はパース対象の部分文字列を特定します。まだ構文の妥当性は確認しません。
func locate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if matches := fencedBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		return matches[1], nil
	}

	objStart := strings.Index(raw, "{")
	arrStart := strings.Index(raw, "[")

	start, closer := objStart, "}"
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start, closer = arrStart, "]"
	}
	if start == -1 {
		return "", &ExtractionError{Reason: "応答に '{' も '[' も含まれていません"}
	}

	// 末尾側は貪欲に取る: 正しいJSONの後ろに説明文が続くことはあっても、
	// モデルが閉じ括弧より後に同種の括弧を出すことはまずないため。
	end := strings.LastIndex(raw, closer)
	if end <= start {
		return "", &ExtractionError{Reason: "閉じ括弧が見つかりません"}
	}
	return raw[start : end+1], nil
}

// parse は厳格なJSONパースを行い、妥当ならそのままの形で返します。
func parse(candidate string) (json.RawMessage, error) {
	var value json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, err
	}
	return value, nil
}
