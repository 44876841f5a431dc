package e2e

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const passphrase = "correct horse battery"

// TestContext carries one scenario's wallets, last response and saved ids.
type TestContext struct {
	BaseURL   string
	MainAdmin string
	client    *http.Client

	wallets map[string]string
	tokens  map[string]string
	caller  string
	saved   map[string]any

	status int
	body   []byte
}

func NewTestContext() *TestContext {
	base := os.Getenv("E2E_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return &TestContext{
		BaseURL:   strings.TrimRight(base, "/"),
		MainAdmin: strings.ToLower(os.Getenv("E2E_MAIN_ADMIN")),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state. Wallet aliases get fresh addresses so
// scenarios never collide on a shared server.
func (tc *TestContext) Reset() {
	tc.wallets = map[string]string{}
	tc.tokens = map[string]string{}
	tc.saved = map[string]any{}
	tc.caller = ""
	tc.status = 0
	tc.body = nil
	if tc.MainAdmin != "" {
		tc.wallets["the main admin"] = tc.MainAdmin
	}
}

// AddressOf returns the wallet address behind alias, minting one on first use.
func (tc *TestContext) AddressOf(alias string) string {
	if addr, ok := tc.wallets[alias]; ok {
		return addr
	}
	buf := make([]byte, 20)
	_, _ = rand.Read(buf)
	addr := "0x" + hex.EncodeToString(buf)
	tc.wallets[alias] = addr
	return addr
}

// Connect creates the wallet account if needed and opens a session for it.
func (tc *TestContext) Connect(alias string) error {
	addr := tc.AddressOf(alias)
	creds := map[string]any{"address": addr, "passphrase": passphrase}

	tc.caller = ""
	if err := tc.POST("/wallet/accounts", creds); err != nil {
		return err
	}
	if tc.status != http.StatusCreated && tc.status != http.StatusConflict {
		return fmt.Errorf("create account for %s: status %d: %s", alias, tc.status, tc.body)
	}
	if err := tc.POST("/wallet/connect", creds); err != nil {
		return err
	}
	if tc.status != http.StatusOK {
		return fmt.Errorf("connect %s: status %d: %s", alias, tc.status, tc.body)
	}
	token, err := tc.ResponseField("access_token")
	if err != nil {
		return err
	}
	tc.tokens[alias] = token.(string)
	tc.caller = alias
	return nil
}

// As makes alias the caller for the following requests.
func (tc *TestContext) As(alias string) error {
	if _, ok := tc.tokens[alias]; !ok {
		if err := tc.Connect(alias); err != nil {
			return err
		}
	}
	tc.caller = alias
	return nil
}

// Anonymous drops the caller so requests go out without a token.
func (tc *TestContext) Anonymous() { tc.caller = "" }

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := tc.tokens[tc.caller]; ok && tc.caller != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.status = resp.StatusCode
	tc.body, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) Status() int { return tc.status }

func (tc *TestContext) Body() string { return string(tc.body) }

// ResponseField reads a top-level field from the last JSON response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var m map[string]any
	if err := json.Unmarshal(tc.body, &m); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.body)
	}
	v, ok := m[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from %s", field, tc.body)
	}
	return v, nil
}

// ResponseList reads a top-level array field from the last JSON response.
func (tc *TestContext) ResponseList(field string) ([]map[string]any, error) {
	var m map[string][]map[string]any
	if err := json.Unmarshal(tc.body, &m); err != nil {
		return nil, fmt.Errorf("response has no list %q: %s", field, tc.body)
	}
	return m[field], nil
}

// SaveField stores a field of the last response under name.
func (tc *TestContext) SaveField(field, name string) error {
	v, err := tc.ResponseField(field)
	if err != nil {
		return err
	}
	tc.saved[name] = v
	return nil
}

// Saved returns a previously saved numeric id.
func (tc *TestContext) Saved(name string) (int64, error) {
	v, ok := tc.saved[name]
	if !ok {
		return 0, fmt.Errorf("nothing saved as %q", name)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%q is not numeric: %v", name, v)
	}
	return int64(f), nil
}
