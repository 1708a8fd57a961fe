// Package llm は、言語モデル呼び出しに共通するリトライと空応答検知を提供するのだ。
package llm

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const (
	// DefaultMaxAttempts は1回の呼び出しで許容する試行回数の上限です。
	DefaultMaxAttempts = 3
	// DefaultBackoffStep は線形バックオフの1段あたりの待ち時間です。
	// n回目の失敗後は n × DefaultBackoffStep だけ待ちます。
	DefaultBackoffStep = 5 * time.Second
)

// ErrMissingCredentials は、APIキー等の資格情報が未設定であることを表します。
// 実行全体を中断すべき設定エラーです。
var ErrMissingCredentials = errors.New("llm: APIキーが設定されていません")

// ErrEmptyResponse は、バックエンドが空（または実質空）の応答を返したことを表します。
// リトライ可能なエラーとして扱われます。
var ErrEmptyResponse = errors.New("llm: モデルの応答が空です")

// TextGenerator は、プロンプトから自由文の完了テキストを得る最小の契約です。
// 本番では gemini クライアントのアダプタが、テストではスタブがこれを満たします。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Invoker は TextGenerator を有限回のリトライで包む呼び出し器です。
type Invoker struct {
	generator   TextGenerator
	maxAttempts int
	backoffStep time.Duration
}

// Option は Invoker の挙動を調整します。
type Option func(*Invoker)

// WithMaxAttempts は試行回数の上限を変更します。
func WithMaxAttempts(n int) Option {
	return func(inv *Invoker) {
		if n > 0 {
			inv.maxAttempts = n
		}
	}
}

// WithBackoffStep は線形バックオフの刻み幅を変更します。テストでは 0 を指定します。
func WithBackoffStep(step time.Duration) Option {
	return func(inv *Invoker) {
		inv.backoffStep = step
	}
}

// NewInvoker は新しい Invoker を生成します。
func NewInvoker(generator TextGenerator, opts ...Option) *Invoker {
	inv := &Invoker{
		generator:   generator,
		maxAttempts: DefaultMaxAttempts,
		backoffStep: DefaultBackoffStep,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke はプロンプトを送信し、応答テキストを返します。
// 一時的な失敗と空応答は上限までリトライし、それでも得られなければ
// エラーではなく空文字を返します。呼び出し側は空文字を
// 「この工程は失敗した」と解釈し、ページの脱落などの劣化で処理を続けます。
// コンテキストの取り消しだけは即座にエラーとして返します。
func (inv *Invoker) Invoke(ctx context.Context, prompt string) (string, error) {
	for attempt := 1; attempt <= inv.maxAttempts; attempt++ {
		text, err := inv.generator.GenerateText(ctx, prompt)
		if err == nil && !isTriviallyEmpty(text) {
			return text, nil
		}

		if err == nil {
			err = ErrEmptyResponse
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		slog.Warn("モデル呼び出しに失敗したのだ。リトライします",
			"attempt", attempt, "max_attempts", inv.maxAttempts, "error", err)

		if attempt < inv.maxAttempts {
			if waitErr := sleepContext(ctx, time.Duration(attempt)*inv.backoffStep); waitErr != nil {
				return "", waitErr
			}
		}
	}

	slog.Warn("リトライ上限に達したため空の結果を返します", "max_attempts", inv.maxAttempts)
	return "", nil
}

// isTriviallyEmpty は、空文字のほか "[]" や "{}" のような中身のない
// 構造だけの応答も「空」とみなします。
func isTriviallyEmpty(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || trimmed == "[]" || trimmed == "{}"
}

// sleepContext はコンテキストの取り消しを尊重して待機します。
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
