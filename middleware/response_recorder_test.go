package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseRecorder_BuffersUntilFlush(t *testing.T) {
	w := httptest.NewRecorder()
	rec := newResponseRecorder(w)

	rec.Header().Set("Content-Type", "text/plain")
	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	_, err := rec.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = rec.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Status())
	assert.Equal(t, "hello world", string(rec.Body()))
	assert.Equal(t, 0, w.Body.Len(), "nothing reaches the client before flush")

	require.NoError(t, rec.flush())
	require.NoError(t, rec.flush())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hello world", w.Body.String())
	assert.Equal(t, "11", w.Header().Get("Content-Length"))
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
}

func TestResponseRecorder_ImplicitStatus(t *testing.T) {
	w := httptest.NewRecorder()
	rec := newResponseRecorder(w)

	assert.False(t, rec.Written())
	assert.Equal(t, http.StatusOK, rec.Status())

	_, _ = rec.Write([]byte("x"))
	assert.True(t, rec.Written())
	require.NoError(t, rec.flush())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResponseRecorder_KeepsExplicitContentLength(t *testing.T) {
	w := httptest.NewRecorder()
	rec := newResponseRecorder(w)

	rec.Header().Set("Content-Length", "3")
	_, _ = rec.Write([]byte("abc"))
	require.NoError(t, rec.flush())

	assert.Equal(t, []string{"3"}, w.Header().Values("Content-Length"))
}

func TestResponseRecorder_NothingWritten(t *testing.T) {
	w := httptest.NewRecorder()
	rec := newResponseRecorder(w)

	require.NoError(t, rec.flush())
	assert.False(t, w.Flushed)
	assert.Empty(t, w.Header())
}

func TestBodyAllowed(t *testing.T) {
	assert.True(t, bodyAllowed(http.StatusOK))
	assert.True(t, bodyAllowed(http.StatusNotFound))
	assert.False(t, bodyAllowed(http.StatusContinue))
	assert.False(t, bodyAllowed(http.StatusNoContent))
	assert.False(t, bodyAllowed(http.StatusNotModified))
}
