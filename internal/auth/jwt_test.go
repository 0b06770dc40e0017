package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key"

func TestJWTTokenRoundTrip(t *testing.T) {
	token, err := GenerateJWTToken(42, testSigningKey, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWTToken(token, testSigningKey)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestValidateJWTTokenRejectsWrongKey(t *testing.T) {
	token, err := GenerateJWTToken(42, testSigningKey, time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWTToken(token, "some-other-key")
	assert.Error(t, err)
}

func TestValidateJWTTokenRejectsExpired(t *testing.T) {
	token, err := GenerateJWTToken(42, testSigningKey, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWTToken(token, testSigningKey)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	token, err := GenerateJWTToken(7, testSigningKey, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "valid bearer token", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID int64
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := GetUserIDFromContext(r.Context())
				require.True(t, ok)
				gotUserID = id
			})

			req := httptest.NewRequest(http.MethodDelete, "/delete-all-user", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			JWTMiddleware(next, testSigningKey).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, int64(7), gotUserID)
			}
		})
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}
