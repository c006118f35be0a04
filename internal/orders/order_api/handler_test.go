package order_api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-raffles/internal/logger"
	"ms-raffles/internal/orders/order_api"
	"ms-raffles/internal/utils"
)

type stubResolver struct {
	url string
	err error
}

func (s *stubResolver) ResolveURL(ref string) (string, error) {
	return s.url, s.err
}

func TestResolveProof(t *testing.T) {
	resolved := "https://api.telegram.org/file/bot123/documents/proof.pdf"
	h := order_api.NewHandler(nil, nil, &stubResolver{url: resolved}, logger.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/proofs?ref=tg_file_id:abc", nil)
	rec := httptest.NewRecorder()
	h.ResolveProof(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, resolved, data["url"])
}

func TestResolveProof_MissingRef(t *testing.T) {
	h := order_api.NewHandler(nil, nil, &stubResolver{}, logger.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/proofs", nil)
	rec := httptest.NewRecorder()
	h.ResolveProof(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveProof_StorageNotConfigured(t *testing.T) {
	h := order_api.NewHandler(nil, nil, nil, logger.NewLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/proofs?ref=tg_file_id:abc", nil)
	rec := httptest.NewRecorder()
	h.ResolveProof(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
