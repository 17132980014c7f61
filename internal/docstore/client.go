package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// DefaultDialTimeout bounds how long a single store request may wait to
// connect.
const DefaultDialTimeout = 5 * time.Second

// Client talks to a remote store server. Each request opens a short-lived
// connection, sends one JSON object and reads one JSON reply.
type Client struct {
	addr        string
	dialTimeout time.Duration
}

var _ Collections = (*Client)(nil)

// NewClient creates a client for the store at addr
func NewClient(addr string) *Client {
	return &Client{addr: addr, dialTimeout: DefaultDialTimeout}
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("docstore dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("docstore send: %w", err)
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("docstore recv: %w", err)
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("docstore %s %s: %s", req.Action, req.Collection, resp.Message)
	}
	return &resp, nil
}

// Load fetches the whole collection and unmarshals it into dest
func (c *Client) Load(ctx context.Context, collection string, dest any) error {
	resp, err := c.do(ctx, Request{Action: ActionGet, Collection: collection})
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	return json.Unmarshal(resp.Data, dest)
}

// Set writes a single value into the collection
func (c *Client) Set(ctx context.Context, collection, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, Request{Action: ActionSet, Collection: collection, Key: key, Value: raw})
	return err
}

// Delete removes a single key from the collection
func (c *Client) Delete(ctx context.Context, collection, key string) error {
	_, err := c.do(ctx, Request{Action: ActionDelete, Collection: collection, Key: key})
	return err
}

// UpdateAll replaces the whole collection document
func (c *Client) UpdateAll(ctx context.Context, collection string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, Request{Action: ActionUpdateAll, Collection: collection, Data: raw})
	return err
}
