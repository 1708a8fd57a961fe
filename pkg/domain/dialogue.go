package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DialogueKind は Dialogue が保持する実体の種別です。
type DialogueKind int

const (
	// DialogueEmpty はセリフなし（null または未指定）を表します。
	DialogueEmpty DialogueKind = iota
	// DialogueText は単一の文字列を表します。
	DialogueText
	// DialogueKeyed は「話者: セリフ」のような順序付きマッピングを表します。
	DialogueKeyed
	// DialogueList は複数要素の並びを表します。要素は再帰的に同じ形を取ります。
	DialogueList
)

// Dialogue は、AIが返すセリフ表現の揺らぎを吸収するタグ付きバリアントなのだ。
// モデルは dialogue を素の文字列で返すこともあれば、話者名をキーにした
// オブジェクトや、複数の吹き出しを配列で返すこともあります。
type Dialogue struct {
	Kind    DialogueKind
	Text    string
	Entries []DialogueEntry
	Items   []Dialogue
}

// DialogueEntry は DialogueKeyed の1要素です。出現順を保持します。
type DialogueEntry struct {
	Key   string
	Value Dialogue
}

// NewText は文字列からセリフを生成するヘルパーです。
func NewText(text string) Dialogue {
	return Dialogue{Kind: DialogueText, Text: text}
}

// UnmarshalJSON は string / object / array / null のいずれの形でも受け付けます。
// オブジェクトはキーの出現順を保持するため、トークン単位でデコードします。
func (d *Dialogue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Dialogue{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*d = Dialogue{Kind: DialogueText, Text: text}
		return nil

	case '[':
		var items []Dialogue
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*d = Dialogue{Kind: DialogueList, Items: items}
		return nil

	case '{':
		entries, err := decodeOrderedEntries(trimmed)
		if err != nil {
			return err
		}
		*d = Dialogue{Kind: DialogueKeyed, Entries: entries}
		return nil

	default:
		// 数値や真偽値はそのまま文字列化して扱うのだ
		var value any
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*d = Dialogue{Kind: DialogueText, Text: fmt.Sprint(value)}
		return nil
	}
}

// decodeOrderedEntries はオブジェクトをキーの出現順のまま読み取ります。
// encoding/json のマップデコードは順序を失うため、Decoder を直接回します。
func decodeOrderedEntries(data []byte) ([]DialogueEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("オブジェクトの先頭トークンが不正です: %v", tok)
	}

	var entries []DialogueEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("オブジェクトのキーが文字列ではありません: %v", keyTok)
		}

		var value Dialogue
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, DialogueEntry{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

// MarshalJSON は元の形（string / object / array）を維持したまま書き出します。
func (d Dialogue) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DialogueText:
		return json.Marshal(d.Text)

	case DialogueList:
		items := d.Items
		if items == nil {
			items = []Dialogue{}
		}
		return json.Marshal(items)

	case DialogueKeyed:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, entry := range d.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(entry.Key)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(entry.Value)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(value)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil

	default:
		return json.Marshal("")
	}
}

// Flatten はバリアントを描画用の1つのテキストへ再帰的に畳み込みます。
//   - 文字列: "<br>" を改行へ置換してそのまま使用
//   - マッピング: 各値を文字列化して ": " で1行に連結
//   - 並び: 各要素を畳み込んで改行で連結
func (d Dialogue) Flatten() string {
	switch d.Kind {
	case DialogueText:
		return strings.ReplaceAll(d.Text, "<br>", "\n")

	case DialogueKeyed:
		parts := make([]string, 0, len(d.Entries))
		for _, entry := range d.Entries {
			parts = append(parts, entry.Value.Flatten())
		}
		return strings.Join(parts, ": ")

	case DialogueList:
		parts := make([]string, 0, len(d.Items))
		for _, item := range d.Items {
			parts = append(parts, item.Flatten())
		}
		return strings.Join(parts, "\n")

	default:
		return ""
	}
}

// IsEmpty は描画対象のテキストを一切持たないかを返します。
func (d Dialogue) IsEmpty() bool {
	return strings.TrimSpace(d.Flatten()) == ""
}
