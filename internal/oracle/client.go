package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/daybook/internal/metrics"
	"github.com/hitoshi/daybook/internal/model"
)

// Config はオラクルクライアントの設定。
type Config struct {
	BaseURL    string        // 解析サービスのベースURL
	Model      string        // 使用するモデル名
	APIKey     string        // APIキー
	Timeout    time.Duration // 1試行あたりのタイムアウト
	MaxRetries int           // 初回試行後のリトライ回数
	RetryDelay time.Duration // リトライ間の固定待機時間
}

// DefaultConfig はデフォルトのクライアント設定を返す。
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		Model:      "gemini-2.5-flash",
		APIKey:     apiKey,
		Timeout:    20 * time.Second,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Client は解析サービスのHTTPクライアント。
// 失敗時は固定間隔でリトライし、上限に達したらORACLE_UNAVAILABLEを返す。
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	metrics    metrics.MetricsCollector
}

// NewClient はClientの新しいインスタンスを生成する。
// タイムアウトはリクエストごとのコンテキストで管理するため、
// http.Client自体にはタイムアウトを設定しない。
func NewClient(config Config, logger *slog.Logger, collector metrics.MetricsCollector) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{},
		logger:     logger,
		metrics:    collector,
	}
}

// --- ワイヤーフォーマット ---

type generateRequest struct {
	Contents       []content       `json:"contents"`
	SafetySettings []safetySetting `json:"safetySettings"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// 解析対象は個人の内省を含むため、コンテンツフィルタをすべて無効にする。
// フィルタが有効だと自傷に関する記述を含む文字起こしが解析できない。
var blockNoneSettings = []safetySetting{
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_CIVIC_INTEGRITY", Threshold: "BLOCK_NONE"},
}

// Analyze はプロンプトを解析サービスに送信し、検証済みの構造化応答を返す。
// 2番目の戻り値は検証済み応答のJSONバイト列（保存用）。
// すべての試行が失敗した場合はORACLE_UNAVAILABLEエラーを返す。
func (c *Client) Analyze(ctx context.Context, prompt string) (*model.Analysis, []byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.config.RetryDelay):
			case <-ctx.Done():
				return nil, nil, fmt.Errorf("解析が中断されました: %w", ctx.Err())
			}
		}

		analysis, raw, err := c.attempt(ctx, prompt)
		if err == nil {
			c.metrics.RecordOracleAttempt(true)
			return analysis, raw, nil
		}

		c.metrics.RecordOracleAttempt(false)
		lastErr = err
		c.logger.Warn("oracle request failed",
			"attempt", attempt+1, "max_attempts", c.config.MaxRetries+1, "error", err)
	}

	c.metrics.RecordOracleExhausted()
	c.logger.Error("oracle retries exhausted", "error", lastErr)
	return nil, nil, model.NewOracleUnavailableError()
}

// attempt は1回の呼び出しを実行する。
func (c *Client) attempt(ctx context.Context, prompt string) (*model.Analysis, []byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		c.metrics.RecordOracleLatency(time.Since(start))
	}()

	payload, err := json.Marshal(generateRequest{
		Contents:       []content{{Parts: []part{{Text: prompt}}}},
		SafetySettings: blockNoneSettings,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("リクエストの構築に失敗しました: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(c.config.BaseURL, "/"), c.config.Model, c.config.APIKey)

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("解析サービスへの接続に失敗しました: %w", err)
	}
	defer resp.Body.Close()

	c.metrics.RecordOracleHTTPStatus(resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("応答の読み取りに失敗しました: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("解析サービスがステータス%dを返しました", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, nil, fmt.Errorf("応答のパースに失敗しました: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, nil, fmt.Errorf("応答に候補が含まれていません")
	}

	cleaned := cleanResponse(gr.Candidates[0].Content.Parts[0].Text)

	analysis, err := parseAnalysis(cleaned)
	if err != nil {
		return nil, nil, err
	}
	return analysis, []byte(cleaned), nil
}

// cleanResponse はモデル出力からMarkdownのコードフェンスを取り除く。
// 指示に反してフェンスで囲まれたJSONが返ることがある。
func cleanResponse(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// parseAnalysis は応答テキストを厳密にパース・検証する。
// スキーマ外のフィールドや不正な値はエラーとする。
func parseAnalysis(cleaned string) (*model.Analysis, error) {
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.DisallowUnknownFields()

	analysis := &model.Analysis{}
	if err := decoder.Decode(analysis); err != nil {
		return nil, fmt.Errorf("応答JSONのパースに失敗しました: %w", err)
	}

	if err := validateAnalysis(analysis); err != nil {
		return nil, fmt.Errorf("応答の検証に失敗しました: %w", err)
	}

	normalizeAnalysis(analysis)
	return analysis, nil
}

// 応答スキーマが許す各リストの上限。
const (
	maxNewHabits    = 4
	maxNewTodos     = 4
	maxNewReminders = 2
	maxSuggestions  = 4
)

func validateAnalysis(a *model.Analysis) error {
	if len(a.NewHabits) > maxNewHabits {
		return fmt.Errorf("習慣提案が上限を超過: %d件 (上限%d)", len(a.NewHabits), maxNewHabits)
	}
	if len(a.NewTodos) > maxNewTodos {
		return fmt.Errorf("タスク提案が上限を超過: %d件 (上限%d)", len(a.NewTodos), maxNewTodos)
	}
	if len(a.NewReminders) > maxNewReminders {
		return fmt.Errorf("リマインダー提案が上限を超過: %d件 (上限%d)", len(a.NewReminders), maxNewReminders)
	}
	if len(a.Suggestions) > maxSuggestions {
		return fmt.Errorf("提案文が上限を超過: %d件 (上限%d)", len(a.Suggestions), maxSuggestions)
	}

	if a.EmotionalState != nil {
		if !model.IsValidEmotionLabel(a.EmotionalState.State) {
			return fmt.Errorf("未知の感情ラベル: %q", a.EmotionalState.State)
		}
		if a.EmotionalState.Intensity < model.MinEmotionIntensity || a.EmotionalState.Intensity > model.MaxEmotionIntensity {
			return fmt.Errorf("感情強度が範囲外: %d", a.EmotionalState.Intensity)
		}
	}

	for _, h := range a.NewHabits {
		if h.Title == "" {
			return fmt.Errorf("習慣提案のタイトルが空")
		}
		if !model.Frequency(h.Frequency).IsValid() {
			return fmt.Errorf("習慣提案の頻度が不正: %q", h.Frequency)
		}
	}

	for _, t := range a.NewTodos {
		if t.Title == "" {
			return fmt.Errorf("タスク提案のタイトルが空")
		}
		if t.DueDate != "" {
			if _, err := time.Parse("2006-01-02", t.DueDate); err != nil {
				return fmt.Errorf("タスク提案の期限が不正: %q", t.DueDate)
			}
		}
	}

	for _, r := range a.NewReminders {
		if r.Title == "" {
			return fmt.Errorf("リマインダー提案のタイトルが空")
		}
		if _, err := time.Parse(time.RFC3339, r.RemindAt); err != nil {
			return fmt.Errorf("リマインダー提案の時刻が不正: %q", r.RemindAt)
		}
	}

	return nil
}

// normalizeAnalysis はnilのリストを空スライスに揃える。
func normalizeAnalysis(a *model.Analysis) {
	if a.NewHabits == nil {
		a.NewHabits = []model.HabitSuggestion{}
	}
	if a.CompletedHabits == nil {
		a.CompletedHabits = []string{}
	}
	if a.NewTodos == nil {
		a.NewTodos = []model.TodoSuggestion{}
	}
	if a.CompletedTodos == nil {
		a.CompletedTodos = []string{}
	}
	if a.NewReminders == nil {
		a.NewReminders = []model.ReminderSuggestion{}
	}
	if a.Suggestions == nil {
		a.Suggestions = []string{}
	}
}
