// Package querygen calls the external natural-language-to-SQL service.
package querygen

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/kart-io/insight/pkg/errors"
)

// Config holds the service endpoint settings.
type Config struct {
	BaseURL string        `json:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8100",
		Timeout: 60 * time.Second,
	}
}

// Request describes one generation call. Tables carries the schema the
// generator may use; banned tables are filtered out before the call.
type Request struct {
	Question string  `json:"question"`
	Dialect  string  `json:"dialect"`
	Tables   []Table `json:"tables"`
}

// Table is one schema table exposed to the generator.
type Table struct {
	Name    string `json:"name"`
	Columns string `json:"columns"`
}

// Result is the generated query.
type Result struct {
	Query       string `json:"query"`
	Explanation string `json:"explanation,omitempty"`
}

// Client generates SQL from natural language questions.
type Client interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}

type httpClient struct {
	config *Config
	client *http.Client
}

// New creates a Client backed by the HTTP service.
func New(cfg *Config) Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &httpClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Generate posts the question and schema to the service.
func (c *httpClient) Generate(ctx context.Context, req *Request) (*Result, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, errors.ErrQueryGenFailed.WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return nil, errors.ErrQueryGenFailed.WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, errors.ErrQueryGenUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ErrQueryGenUnavailable.WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ErrQueryGenFailed.WithMessagef("service returned %d", resp.StatusCode)
	}

	var result Result
	if err := sonic.Unmarshal(data, &result); err != nil {
		return nil, errors.ErrQueryGenFailed.WithCause(err)
	}
	return &result, nil
}
