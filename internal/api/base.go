// Package api contains one function per backend operation. Functions are
// stateless: the HTTP client (carrying the authenticated transport) and the
// base URL are passed in, which keeps them trivial to exercise against
// httptest servers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	interrors "github.com/instiwise/client-go/internal/errors"
	"github.com/instiwise/client-go/internal/types"
)

// HTTPClient interface for dependency injection.
type HTTPClient = types.HTTPClient

// newJSONRequest builds a request with a JSON body. The body is replayable,
// so the auth pipeline can retry it after a token refresh.
func newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// statusErr classifies an unexpected response status. 404 maps onto the
// shared ErrNotFound sentinel.
func statusErr(operation string, statusCode int) error {
	if statusCode == http.StatusNotFound {
		return types.ErrNotFound
	}
	return interrors.FromStatus(operation, statusCode)
}
