// Package handler provides the hub's request handlers.
package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/padkit/padkit/apitypes"
	"github.com/padkit/padkit/internal/hub"
)

// Ping returns a handler answering with server identity and version.
func Ping(version string) hub.HandlerFunc {
	return func(req *hub.Request, res *hub.Response, logger *slog.Logger) error {
		payload := apitypes.PingResponse{Server: "padkit", Version: version}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}
