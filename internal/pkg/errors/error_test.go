package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("lead 4: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("status: %w", ErrInvalidInput), http.StatusBadRequest},
		{ErrSessionExpired, http.StatusUnauthorized},
		{Wrap(ErrRateLimited, "login"), http.StatusTooManyRequests},
		{Wrap(ErrPersistFailed, "move lead"), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
}
