// Package provider はスクレイピングプロバイダーAPIのクライアントを提供する。
// データセットのレコード一括取得と、エクスポート完了後のデータセット削除を含む。
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hitoshi/exportman/internal/model"
)

// Client はスクレイピングプロバイダーAPIのクライアント。
// データセットIDを指定してスクレイピング結果の生レコードを取得する。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiToken   string
	maxRecords int
}

// NewClient はClient の新しいインスタンスを生成する。
// maxRecords は1リクエストで取得するレコード数の上限。
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiToken string, maxRecords int) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiToken:   apiToken,
		maxRecords: maxRecords,
	}
}

// ListRecords はデータセットの生レコードを一括取得する。
// limit が0以下の場合はクライアントのデフォルト上限を使用する。
// レコードのスキーマは不定であり、呼び出し元が正規化を行う。
func (c *Client) ListRecords(ctx context.Context, datasetID string, limit int) ([]model.RawRecord, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("データセットIDが指定されていません")
	}
	if limit <= 0 {
		limit = c.maxRecords
	}

	// リクエストURL構築
	reqURL, err := url.Parse(fmt.Sprintf("%s/v2/datasets/%s/items", c.baseURL, url.PathEscape(datasetID)))
	if err != nil {
		return nil, fmt.Errorf("プロバイダーURLのパースに失敗しました: %w", err)
	}
	q := reqURL.Query()
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(limit))
	reqURL.RawQuery = q.Encode()

	// HTTPリクエスト作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Accept", "application/json")

	// HTTPリクエスト実行
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("プロバイダーAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("dataset_id", datasetID),
		)
		return nil, err
	}
	defer resp.Body.Close()

	// HTTPステータスチェック
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("プロバイダーAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("dataset_id", datasetID),
		)
		return nil, fmt.Errorf("プロバイダーAPIがステータス %d を返しました", resp.StatusCode)
	}

	// レスポンスボディ読み取り
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	// JSONデコード
	var records []model.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		c.logger.Error("プロバイダーAPIのレスポンスのパースに失敗しました",
			slog.String("error", err.Error()),
			slog.String("dataset_id", datasetID),
		)
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return records, nil
}

// DeleteDataset はエクスポート完了後にプロバイダー側のデータセットを削除する。
// ストレージコスト削減のためのクリーンアップであり、失敗してもエクスポート
// 結果には影響しない（呼び出し元がベストエフォートで実行する）。
func (c *Client) DeleteDataset(ctx context.Context, datasetID string) error {
	if datasetID == "" {
		return fmt.Errorf("データセットIDが指定されていません")
	}

	reqURL := fmt.Sprintf("%s/v2/datasets/%s", c.baseURL, url.PathEscape(datasetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, reqURL, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("データセット削除リクエストに失敗しました",
			slog.String("error", err.Error()),
			slog.String("dataset_id", datasetID),
		)
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("データセット削除がステータス %d を返しました", resp.StatusCode)
	}

	return nil
}
