package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/padkit/padkit/apitypes"
)

// EventStream is a live subscription to the hub's decoded controller events.
type EventStream struct {
	conn net.Conn
	r    *bufio.Reader
}

// StreamEvents subscribes to the hub's event feed. Close the stream to end
// the subscription.
func (c *Client) StreamEvents() (*EventStream, error) {
	return c.StreamEventsCtx(context.Background())
}

func (c *Client) StreamEventsCtx(ctx context.Context) (*EventStream, error) {
	const path = "events"
	conn, r, err := c.transport.DialStream(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return &EventStream{conn: conn, r: r}, nil
}

// Next blocks until the next event arrives. It returns an error when the hub
// rejects the subscription or the connection ends.
func (s *EventStream) Next() (*apitypes.Event, error) {
	line, err := s.r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}

	var problem apitypes.ApiError
	if err := json.Unmarshal(line, &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}

	var ev apitypes.Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

// Close ends the subscription.
func (s *EventStream) Close() error { return s.conn.Close() }
