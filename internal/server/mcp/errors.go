package mcp

import (
	"encoding/json"
	"errors"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/mcp"
)

// braerrResponse converts a braerr.Error (or any other error) into a
// StructuredErrorResponse, preserving the closed taxonomy's retryable/
// retry_after_ms fields so the calling agent can act on them (§7
// Propagation policy: "RPC envelopes never throw raw exceptions").
func braerrResponse(err error) json.RawMessage {
	var be *braerr.Error
	if errors.As(err, &be) {
		return mcp.StructuredErrorResponse(string(be.Code), be.Message, retryHint(be),
			mcp.WithRetryable(be.Retryable), mcp.WithRetryAfterMs(be.RetryAfterMs))
	}
	return mcp.StructuredErrorResponse(mcp.ErrInternal, err.Error(), "this is unexpected; report it")
}

func retryHint(be *braerr.Error) string {
	if be.Retryable {
		return "transient failure, retry after the suggested delay"
	}
	return "not retryable as-is; change the request and try again"
}
