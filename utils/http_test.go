package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/web-core/internal/bizerr"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("unencodable data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]any{"ch": make(chan int)})
		assert.Error(t, err)
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"result": "success"}

	err := WriteOK(w, data)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)

	var response Result
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, CodeOK, response.Code)
	assert.Equal(t, "success", response.Message)
	dataMap := response.Data.(map[string]interface{})
	assert.Equal(t, "success", dataMap["result"])
}

func TestWriteCreated(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"id": "123"}

	err := WriteCreated(w, data)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response Result
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	dataMap := response.Data.(map[string]interface{})
	assert.Equal(t, "123", dataMap["id"])
}

func TestWriteBizError(t *testing.T) {
	tests := []struct {
		name           string
		err            *bizerr.BizError
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "param error with data",
			err:            bizerr.ErrParam.WithData(map[string]string{"name": "name is required"}),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"code":400,"message":"invalid parameter","data":{"name":"name is required"}}`,
		},
		{
			name:           "not found",
			err:            bizerr.Newf(bizerr.CodeNotFound, "user %s not found", "9"),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"code":404,"message":"user 9 not found"}`,
		},
		{
			name:           "custom business code",
			err:            bizerr.Newf(bizerr.Code(10001), "quota used up"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"code":10001,"message":"quota used up"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := WriteBizError(w, tt.err)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		message         string
		expectedMessage string
	}{
		{"bad request", http.StatusBadRequest, "Invalid input", "Invalid input"},
		{"unauthorized default message", http.StatusUnauthorized, "", "unauthorized"},
		{"forbidden default message", http.StatusForbidden, "", "access forbidden"},
		{"not found default message", http.StatusNotFound, "", "resource not found"},
		{"unknown status default message", http.StatusTeapot, "", "system error"},
		{"internal error", http.StatusInternalServerError, "Server error", "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := WriteError(w, tt.status, tt.message, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.status, w.Code)

			var response Result
			err = json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)

			assert.Equal(t, tt.status, response.Code)
			assert.Equal(t, tt.expectedMessage, response.Message)
			assert.Nil(t, response.Data)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"li"}`))
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "li", p.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"li","extra":1}`))
		var p payload
		assert.Error(t, DecodeJSON(r, &p))
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var p payload
		assert.Error(t, DecodeJSON(r, &p))
	})

	t.Run("nil body", func(t *testing.T) {
		r := &http.Request{}
		var p payload
		assert.EqualError(t, DecodeJSON(r, &p), "request body is empty")
	})
}
