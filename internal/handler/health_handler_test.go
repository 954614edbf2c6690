package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"medvault/internal/handler"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("unused") }))

	c, w := newContext(http.MethodGet, "/healthz", nil)
	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_Readiness(t *testing.T) {
	ok := handler.NewHealthHandler(pingFunc(func(context.Context) error { return nil }))
	c, w := newContext(http.MethodGet, "/readyz", nil)
	ok.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	down := handler.NewHealthHandler(pingFunc(func(context.Context) error { return errors.New("conn refused") }))
	c, w = newContext(http.MethodGet, "/readyz", nil)
	down.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "database not reachable")
}
