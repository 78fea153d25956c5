package caching

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type upstashCache struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type upstashResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// NewUpstashCache creates a cache speaking the Upstash REST protocol
func NewUpstashCache(baseURL, token string, timeout time.Duration) Cache {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &upstashCache{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (u *upstashCache) Backend() string { return "upstash" }

// do posts one command as a JSON array and returns the raw result
func (u *upstashCache) do(ctx context.Context, args ...string) (json.RawMessage, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstash %s failed: %w", args[0], err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstash response: %w", err)
	}

	var out upstashResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("upstash %s returned status %d: %s", args[0], resp.StatusCode, string(body))
	}
	if out.Error != "" {
		return nil, fmt.Errorf("upstash %s: %s", args[0], out.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstash %s returned status %d", args[0], resp.StatusCode)
	}
	return out.Result, nil
}

func (u *upstashCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := u.do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil // cache miss
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("unexpected upstash GET result: %w", err)
	}
	return []byte(value), nil
}

func (u *upstashCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := []string{"SET", key, string(value)}
	if secs := int64(ttl / time.Second); secs > 0 {
		args = append(args, "EX", strconv.FormatInt(secs, 10))
	}
	_, err := u.do(ctx, args...)
	return err
}

func (u *upstashCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := u.do(ctx, append([]string{"DEL"}, keys...)...)
	return err
}

func (u *upstashCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	cursor := "0"
	for {
		raw, err := u.do(ctx, "SCAN", cursor, "MATCH", prefix+"*", "COUNT", strconv.Itoa(scanBatch))
		if err != nil {
			return err
		}

		// SCAN replies with [cursor, [keys...]]
		var reply []json.RawMessage
		if err := json.Unmarshal(raw, &reply); err != nil || len(reply) != 2 {
			return fmt.Errorf("unexpected upstash SCAN result: %s", string(raw))
		}
		if err := json.Unmarshal(reply[0], &cursor); err != nil {
			var n int64
			if err := json.Unmarshal(reply[0], &n); err != nil {
				return fmt.Errorf("unexpected upstash SCAN cursor: %s", string(reply[0]))
			}
			cursor = strconv.FormatInt(n, 10)
		}
		var keys []string
		if err := json.Unmarshal(reply[1], &keys); err != nil {
			return fmt.Errorf("unexpected upstash SCAN keys: %w", err)
		}

		if err := u.Invalidate(ctx, keys...); err != nil {
			return err
		}
		if cursor == "0" {
			return nil
		}
	}
}

func (u *upstashCache) Ping(ctx context.Context) error {
	_, err := u.do(ctx, "PING")
	return err
}
