// Package cli implements hallctl, a command-line client for the lobby's
// wire protocol.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/gamehall/gamehall/internal/protocol"
)

// Client holds one long-lived connection to the lobby
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to the lobby
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect to lobby: %w", err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one request and returns the synchronous reply. The lobby may
// interleave unsolicited event lines on the same socket; those are
// identified by their "type":"event" marker and skipped here.
func (c *Client) Do(req protocol.Request) (map[string]any, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	for {
		resp, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if resp["type"] == "event" {
			continue
		}
		return resp, nil
	}
}

// NextEvent blocks until the lobby pushes an event line
func (c *Client) NextEvent() (map[string]any, error) {
	for {
		resp, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if resp["type"] == "event" {
			return resp, nil
		}
	}
}

func (c *Client) readLine() (map[string]any, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	return resp, nil
}

// DoChecked sends a request and fails on an error status
func (c *Client) DoChecked(req protocol.Request) (map[string]any, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	if resp["status"] != "ok" {
		msg, _ := resp["message"].(string)
		return nil, fmt.Errorf("%s failed: %s", req.Action, msg)
	}
	return resp, nil
}
