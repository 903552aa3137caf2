// HTTP client for the external inference service. The service runs the
// whole answer pipeline (routing, KB lookup, web search); this side only
// sends a query and waits.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"starlit/starlit/types"
	httputils "starlit/starlit/utils/http"
	"starlit/starlit/utils/logging"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, httpClient: http.DefaultClient}
}

type queryRequest struct {
	Query     string `json:"query"`
	ModelName string `json:"model_name"`
	ThreadID  string `json:"thread_id"`
}

type queryResponse struct {
	Response string `json:"response"`
}

// Infer sends one query and returns the answer text. correlationID is passed
// through as the service's thread id for traceability; it is not persisted.
// No retry here: both failure classes are terminal for the current request.
func (c *Client) Infer(ctx context.Context, query, modelName, correlationID string) (string, error) {
	defer logging.LogDuration(ctx, "llm_infer")()

	req := queryRequest{
		Query:     query,
		ModelName: modelName,
		ThreadID:  correlationID,
	}
	var resp queryResponse
	err := httputils.PostJSON(ctx, c.httpClient, c.baseURL+"/query", req, &resp)
	if err != nil {
		var badStatus *httputils.ErrBadStatus
		if errors.As(err, &badStatus) {
			return "", fmt.Errorf("%w: status %d", types.ErrInferenceRejected, badStatus.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", types.ErrInferenceUnavailable, err)
	}
	if resp.Response == "" {
		return "", fmt.Errorf("%w: empty response", types.ErrInferenceRejected)
	}
	return resp.Response, nil
}
