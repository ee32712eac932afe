package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Do serves one request through h and returns the recorded response.
// body may be nil, a string or io.Reader sent as is, or any other value
// encoded as JSON. headers are key/value pairs.
func Do(t *testing.T, h http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	reader := bodyReader(t, body)
	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func bodyReader(t *testing.T, body any) io.Reader {
	switch b := body.(type) {
	case nil:
		return nil
	case io.Reader:
		return b
	case string:
		return strings.NewReader(b)
	default:
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(b), "Failed to encode request body")
		return &buf
	}
}

// DecodeJSON unmarshals the recorded body into T.
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "Failed to decode body: %s", w.Body.String())
	return v
}

// AssertErrorCode checks the status and the "code" field of an error body.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, "body: %s", w.Body.String())
	body := DecodeJSON[map[string]any](t, w)
	assert.Equal(t, code, body["code"])
}
