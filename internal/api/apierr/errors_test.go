package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/netpong/internal/model"
)

func TestWriteErrorMapsModelErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"lobby not found", model.ErrLobbyNotFound, http.StatusNotFound, CodeLobbyNotFound},
		{"match not found", fmt.Errorf("get: %w", model.ErrMatchNotFound), http.StatusNotFound, CodeMatchNotFound},
		{"invalid id", model.ErrInvalidGameID, http.StatusBadRequest, CodeInvalidRequest},
		{"explicit", NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown", errors.New("redis down"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}
