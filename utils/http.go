package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/upb/web-core/internal/bizerr"
)

// Result is the response envelope shared by success and error responses
type Result struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// CodeOK is the envelope code of a successful response
const CodeOK = 0

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Result{Code: CodeOK, Message: "success", Data: data})
}

// WriteCreated writes a 201 Created response with optional data
func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, Result{Code: CodeOK, Message: "success", Data: data})
}

// WriteBizError writes err as a Result using the HTTP status of its code
func WriteBizError(w http.ResponseWriter, err *bizerr.BizError) error {
	return WriteJSON(w, err.Code.HTTPStatus(), Result{
		Code:    int(err.Code),
		Message: err.Message,
		Data:    err.Data,
	})
}

// WriteError writes an error response based on the status code
func WriteError(w http.ResponseWriter, status int, message string, data any) error {
	code := bizerr.Code(status)
	if message == "" {
		message = code.Message()
	}
	return WriteJSON(w, status, Result{Code: status, Message: message, Data: data})
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
