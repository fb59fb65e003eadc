package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/server"
	"stockroom/internal/shared"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &shared.Config{
		AppName:      "Client Test",
		Environment:  "test",
		APIKey:       "test-key",
		LogFormat:    shared.LogFormatText,
		StoreBackend: shared.StoreMemory,
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	api, err := server.NewAPI(cfg, server.NewMemoryStore(), log)
	require.NoError(t, err)
	ts := httptest.NewServer(api.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_ItemRoundTrip(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	c := New(ts.URL+"/", "")
	ctx := context.Background()

	created, err := c.CreateItem(ctx, shared.ItemCreate{Name: "Widget", Price: 9.5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.True(t, created.InStock)

	got, err := c.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	items, err := c.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, []shared.Item{created}, items)

	require.NoError(t, c.DeleteItem(ctx, created.ID))

	err = c.DeleteItem(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, IsType(err, shared.ErrorTypeNotFound))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_ValidationErrorDetails(t *testing.T) {
	t.Parallel()
	c := New(newServer(t).URL, "")

	_, err := c.CreateItem(context.Background(), shared.ItemCreate{Name: "", Price: -1})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, shared.ErrorTypeValidation, apiErr.Body.ErrorType)
	assert.GreaterOrEqual(t, len(apiErr.Body.Details), 2)
}

func TestClient_Divide(t *testing.T) {
	t.Parallel()
	c := New(newServer(t).URL, "")
	ctx := context.Background()

	got, err := c.Divide(ctx, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	_, err = c.Divide(ctx, 1, 0)
	assert.True(t, IsType(err, shared.ErrorTypeDivisionByZero))
}

func TestClient_SecureData(t *testing.T) {
	t.Parallel()
	ts := newServer(t)
	ctx := context.Background()

	_, err := New(ts.URL, "").SecureData(ctx)
	assert.True(t, IsType(err, shared.ErrorTypeUnauthorized))

	_, err = New(ts.URL, "TEST-KEY").SecureData(ctx)
	assert.True(t, IsType(err, shared.ErrorTypeUnauthorized))

	out, err := New(ts.URL, "test-key").SecureData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "approved", out.SecretData)
}

func TestClient_ConfigAndHealth(t *testing.T) {
	t.Parallel()
	c := New(newServer(t).URL, "")
	ctx := context.Background()

	cfg, err := c.Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, shared.ConfigView{AppName: "Client Test", Environment: "test"}, cfg)

	h, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.Zero(t, h.Items)
}

func TestClient_NonJSONError(t *testing.T) {
	t.Parallel()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	_, err := New(ts.URL, "").Health(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "http 502", apiErr.Error())
}

func TestPrint(t *testing.T) {
	t.Parallel()

	item := shared.Item{ID: 1, Name: "Widget", Price: 2.5, InStock: true}

	var j bytes.Buffer
	require.NoError(t, Print(&j, OutputJSON, item))
	assert.JSONEq(t, `{"id":1,"name":"Widget","price":2.5,"in_stock":true}`, j.String())

	var y bytes.Buffer
	require.NoError(t, Print(&y, OutputYAML, item))
	assert.Equal(t, "id: 1\nname: Widget\nprice: 2.5\nin_stock: true\n", y.String())

	assert.Error(t, Print(io.Discard, "xml", item))
}

func TestPrint_RedactsConfig(t *testing.T) {
	t.Parallel()

	cfg := &shared.Config{AppName: "a", APIKey: "top-secret"}
	for _, format := range []string{OutputJSON, OutputYAML} {
		var buf bytes.Buffer
		require.NoError(t, Print(&buf, format, cfg))
		assert.NotContains(t, buf.String(), "top-secret")
	}
}
