// Package bulk implements ports.BulkWriter against an Elasticsearch-compatible
// _bulk endpoint.
package bulk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bft-labs/lumberjack/internal/domain"
	"github.com/bft-labs/lumberjack/internal/ports"
)

const bulkEndpoint = "/_bulk"

// Config holds connection settings for the document store.
type Config struct {
	// URL is the base URL of the store, e.g. http://localhost:9200.
	URL string

	// Username and Password enable basic auth when Username is set.
	Username string
	Password string

	// Timeout bounds a single bulk request.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Client writes batches with one NDJSON _bulk request.
type Client struct {
	client *resty.Client
	logger ports.Logger
}

// NewClient creates a bulk client. If httpClient is nil, resty's default
// client is used.
func NewClient(cfg Config, httpClient *http.Client, logger ports.Logger) *Client {
	var rc *resty.Client
	if httpClient != nil {
		rc = resty.NewWithClient(httpClient)
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Username != "" {
		rc.SetBasicAuth(cfg.Username, cfg.Password)
	}

	rc.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("bulk response",
			ports.Int("status", resp.StatusCode()),
			ports.Duration("took", resp.Time()),
		)
		return nil
	})

	return &Client{client: rc, logger: logger}
}

type bulkResponse struct {
	Took   int                           `json:"took"`
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	Index  string `json:"_index"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

type actionMeta struct {
	Index string `json:"_index"`
	Type  string `json:"_type,omitempty"`
}

// Bulk sends all actions in a single request.
// Connection failures, 429 and 5xx responses are returned as
// *domain.TransportError.
func (c *Client) Bulk(ctx context.Context, actions []domain.Action) error {
	if len(actions) == 0 {
		return nil
	}

	body, err := encodeActions(actions)
	if err != nil {
		return err
	}

	var result bulkResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-ndjson").
		SetBody(body).
		SetResult(&result).
		Post(bulkEndpoint)
	if err != nil {
		return domain.NewTransportError(0, fmt.Errorf("send bulk request: %w", err))
	}

	// Any non-2xx on the request as a whole means the batch was not accepted
	// and belongs in the fallback file. Per-document rejections arrive in a
	// 200 response and are reported as BulkItemError instead.
	if status := resp.StatusCode(); status/100 != 2 {
		return domain.NewTransportError(status, fmt.Errorf("server returned %d: %s", status, truncate(resp.String())))
	}

	if result.Errors {
		return itemError(result)
	}
	return nil
}

// encodeActions renders the NDJSON body: one metadata line and one source
// line per action.
func encodeActions(actions []domain.Action) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, a := range actions {
		op := a.OpType
		if op == "" {
			op = domain.OpIndex
		}
		meta := map[string]actionMeta{op: {Index: a.Index, Type: a.Type}}
		if err := enc.Encode(meta); err != nil {
			return nil, fmt.Errorf("encode action metadata: %w", err)
		}
		source := a.Source
		if source == nil {
			source = domain.Body{}
		}
		if err := enc.Encode(source); err != nil {
			return nil, fmt.Errorf("encode document for %s: %w", a.Index, err)
		}
	}
	return buf.Bytes(), nil
}

func itemError(result bulkResponse) error {
	failed := 0
	first := ""
	for _, item := range result.Items {
		for _, res := range item {
			if res.Error == nil && res.Status < 300 {
				continue
			}
			failed++
			if first == "" && res.Error != nil {
				first = res.Error.Type + ": " + res.Error.Reason
			}
		}
	}
	return &domain.BulkItemError{Failed: failed, Total: len(result.Items), First: first}
}

func truncate(s string) string {
	const max = 512
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
