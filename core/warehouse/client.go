package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core"
)

// Client is the tutorial's warehouse glue: statement-over-REST with
// credentials straight from config. It is demonstration plumbing, not a
// production client; the only error handling is surfacing the upstream
// message.

type (
	NotConfiguredError struct {
		Missing []string
	}

	Status struct {
		Configured     bool     `json:"configured"`
		MissingKeys    []string `json:"missing_keys,omitempty"`
		ServerHostname string   `json:"server_hostname,omitempty"`
		Catalog        string   `json:"catalog,omitempty"`
		Schema         string   `json:"schema,omitempty"`
	}

	StatementResult struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
	}

	Client struct {
		conf    core.WarehouseConfig
		http    *http.Client
		baseURL string // derived from conf; overridable in tests
	}
)

func (e *NotConfiguredError) Error() string {
	return "warehouse not configured, missing: " + strings.Join(e.Missing, ", ")
}

func NewClient(conf core.WarehouseConfig) *Client {
	c := &Client{
		conf: conf,
		http: &http.Client{Timeout: conf.Timeout},
	}
	if conf.ServerHostname != "" {
		c.baseURL = "https://" + conf.ServerHostname
	}
	return c
}

func (c *Client) Status() Status {
	ok, missing := c.conf.IsConfigured()
	st := Status{Configured: ok, MissingKeys: missing}
	if ok {
		st.ServerHostname = c.conf.ServerHostname
		st.Catalog = c.conf.Catalog
		st.Schema = c.conf.Schema
	}
	return st
}

// warehouseID is the trailing segment of the configured HTTP path.
func (c *Client) warehouseID() string {
	parts := strings.Split(strings.TrimRight(c.conf.HTTPPath, "/"), "/")
	return parts[len(parts)-1]
}

type (
	statementRequest struct {
		Statement   string `json:"statement"`
		WarehouseID string `json:"warehouse_id"`
		Catalog     string `json:"catalog,omitempty"`
		Schema      string `json:"schema,omitempty"`
	}

	statementResponse struct {
		Status struct {
			State string `json:"state"`
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"status"`
		Manifest struct {
			Schema struct {
				Columns []struct {
					Name string `json:"name"`
				} `json:"columns"`
			} `json:"schema"`
		} `json:"manifest"`
		Result struct {
			DataArray [][]interface{} `json:"data_array"`
		} `json:"result"`
	}
)

// ExecuteStatement runs one SQL statement against the configured warehouse
// and returns its rows, or the upstream error text.
func (c *Client) ExecuteStatement(ctx context.Context, statement string) (StatementResult, error) {
	if ok, missing := c.conf.IsConfigured(); !ok {
		return StatementResult{}, &NotConfiguredError{Missing: missing}
	}

	body, err := json.Marshal(statementRequest{
		Statement:   statement,
		WarehouseID: c.warehouseID(),
		Catalog:     c.conf.Catalog,
		Schema:      c.conf.Schema,
	})
	if err != nil {
		return StatementResult{}, errors.Wrap(err, "encoding statement")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/2.0/sql/statements", bytes.NewReader(body))
	if err != nil {
		return StatementResult{}, errors.Wrap(err, "building request")
	}
	req.Header.Set("Authorization", "Bearer "+c.conf.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return StatementResult{}, errors.Wrap(err, "calling warehouse")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return StatementResult{}, errors.Wrap(err, "reading warehouse response")
	}
	if resp.StatusCode != http.StatusOK {
		return StatementResult{}, errors.Errorf("warehouse returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var sr statementResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return StatementResult{}, errors.Wrap(err, "decoding warehouse response")
	}
	if sr.Status.State == "FAILED" {
		return StatementResult{}, errors.Errorf("statement failed: %s", sr.Status.Error.Message)
	}

	res := StatementResult{Rows: sr.Result.DataArray}
	for _, col := range sr.Manifest.Schema.Columns {
		res.Columns = append(res.Columns, col.Name)
	}
	return res, nil
}
