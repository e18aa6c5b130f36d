package bizerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeNotFound)

	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, "resource not found", err.Message)
	assert.Nil(t, err.Data)
	assert.Nil(t, err.Err)
}

func TestNewf(t *testing.T) {
	err := Newf(CodeParamError, "user %d does not exist", 7)

	assert.Equal(t, CodeParamError, err.Code)
	assert.Equal(t, "user 7 does not exist", err.Message)
}

func TestBizError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *BizError
		wantMsg string
	}{
		{
			name:    "error with cause",
			err:     Wrap(CodeSystemError, "query failed", errors.New("db down")),
			wantMsg: "500: query failed (db down)",
		},
		{
			name:    "error without cause",
			err:     New(CodeForbidden),
			wantMsg: "403: access forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(CodeSystemError, "", cause)

	assert.Equal(t, "system error", err.Message)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.ErrorIs(t, err, cause)
}

func TestBizError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{name: "same code", err: Newf(CodeNotFound, "user missing"), target: ErrNotFound, want: true},
		{name: "different code", err: New(CodeParamError), target: ErrNotFound, want: false},
		{name: "wrapped with fmt", err: fmt.Errorf("handler: %w", New(CodeUnauthorized)), target: ErrUnauthorized, want: true},
		{name: "plain error target", err: New(CodeNotFound), target: errors.New("x"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestBizError_WithData(t *testing.T) {
	withData := ErrParam.WithData(map[string]string{"name": "name is required"})

	assert.Equal(t, map[string]string{"name": "name is required"}, withData.Data)
	assert.Nil(t, ErrParam.Data, "sentinel must not be modified")
	assert.ErrorIs(t, withData, ErrParam)
}

func TestCode_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, CodeSystemError.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, CodeParamError.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, CodeUnauthorized.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, CodeForbidden.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, CodeNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, Code(409).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Code(10001).HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, Code(200).HTTPStatus())
}

func TestCode_Message(t *testing.T) {
	assert.Equal(t, "unauthorized", CodeUnauthorized.Message())
	assert.Equal(t, "system error", Code(10001).Message())
}

func TestAsAndCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(CodeForbidden))

	bizErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeForbidden, bizErr.Code)
	assert.Equal(t, CodeForbidden, CodeOf(wrapped))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, CodeSystemError, CodeOf(errors.New("plain")))
}
