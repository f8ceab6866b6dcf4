package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("booking %s not found", "b1"), http.StatusNotFound},
		{Forbidden("not yours"), http.StatusForbidden},
		{InvalidState("already accepted"), http.StatusBadRequest},
		{Conflict("duplicate bid"), http.StatusBadRequest},
		{VerificationFailed("bad signature"), http.StatusBadRequest},
		{Validation("rating must be between 1 and 5"), http.StatusBadRequest},
		{Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{Internal("db down", errors.New("timeout")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("accept bid: %w", InvalidState("requirement is no longer open"))
	assert.True(t, IsKind(err, KindInvalidState))
	assert.False(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(nil, KindInternal))

	cause := errors.New("connection reset")
	wrapped := Internal("failed to save bid", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "failed to save bid: connection reset", wrapped.Error())
}

func TestRespondErrorMasksInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	respond := func(err error) (int, ErrorResponse) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
		RespondError(c, err)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	code, body := respond(Internal("mongo write failed", errors.New("E11000 secret detail")))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", body.Message)
	assert.False(t, body.Success)

	code, body = respond(InvalidState("booking is already paid"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "booking is already paid", body.Message)
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, err := m.GenerateToken("user-1", "farmer")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "farmer", claims.Role)

	_, err = NewJWTManager("other", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	expired, err := NewJWTManager("secret", -time.Minute).GenerateToken("user-1", "farmer")
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.Error(t, err)
}
