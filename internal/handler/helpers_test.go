package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"medvault/internal/handler"
	"medvault/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, path string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == nil {
		body = http.NoBody
	}
	c.Request, _ = http.NewRequest(method, path, body)
	return c, w
}

func jsonContext(t *testing.T, method, path string, payload interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	c, w := newContext(method, path, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func setAuthContext(c *gin.Context, userID uuid.UUID) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyEmail, "jordan@example.com")
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func multipartContext(t *testing.T, path string, files map[string]string, fields map[string]string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for field, name := range files {
		part, err := writer.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test content"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	c, w := newContext(http.MethodPost, path, body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	return c, w
}

func idParam(id string) gin.Params {
	return gin.Params{{Key: "id", Value: id}}
}
