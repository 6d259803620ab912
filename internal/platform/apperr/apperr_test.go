package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalid("x"), http.StatusBadRequest},
		{ErrInvalidUser("x"), http.StatusUnauthorized},
		{ErrForbidden("x"), http.StatusForbidden},
		{ErrNotFound("x"), http.StatusNotFound},
		{ErrConflict("x"), http.StatusConflict},
		{ErrSerialization("x", errors.New("bad json")), http.StatusInternalServerError},
		{ErrInternal("x"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", ErrForbidden("x")), http.StatusForbidden},
		{&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, http.StatusConflict},
		{&mysql.MySQLError{Number: 1451, Message: "Cannot delete"}, http.StatusConflict},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.err), tt.err.Error())
	}
}

func TestFromKeepsCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := fmt.Errorf("detail: %w", ErrSerialization("decode failed", cause))

	api := From(err)
	assert.Equal(t, CodeSerialization, api.Code)
	assert.ErrorIs(t, api, cause)
	assert.True(t, Is(err, CodeSerialization))
	assert.False(t, Is(err, CodeNotFound))

	raw := From(errors.New("boom"))
	assert.Equal(t, CodeInternal, raw.Code)
}
