package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aldis-z/notice-board/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}, token string) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestAuthHandler_SignUp(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
	}{
		{
			name: "successful sign-up",
			request: map[string]string{
				"email":    "new@example.com",
				"password": "val1d-password!",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid email",
			request: map[string]string{
				"email":    "not-an-email",
				"password": "val1d-password!",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "weak password",
			request: map[string]string{
				"email":    "weak@example.com",
				"password": "password",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email still reads as created",
			request: map[string]string{
				"email":    "dupe@example.com",
				"password": "val1d-password!",
			},
			setup: func() {
				testutil.NewUserBuilder().WithEmail("dupe@example.com").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			resp := postJSON(t, ts.APIURL("/auth/sign-up"), tt.request, "")
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
		})
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.DB.Truncate(t)

	user, _, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	t.Run("valid credentials return a token", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/sign-in"), map[string]string{
			"email":    user.Email,
			"password": password,
		}, "")
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var result struct {
			AccessToken string `json:"accessToken"`
			Profile     struct {
				Slug string `json:"slug"`
			} `json:"profile"`
		}
		testutil.AssertJSONResponse(t, resp, &result)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.Profile.Slug)
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		resp := postJSON(t, ts.APIURL("/auth/sign-in"), map[string]string{
			"email":    user.Email,
			"password": "wrong-password1!",
		}, "")
		defer resp.Body.Close()

		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid credentials")
	})
}

func TestAuthHandler_RateLimitHeaders(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.DB.Truncate(t)

	testutil.NewUserBuilder().WithEmail("limited@example.com").Unverified().Build(t, ts.DB.DB)

	first := postJSON(t, ts.APIURL("/auth/resend-verification"), map[string]string{
		"email": "limited@example.com",
	}, "")
	first.Body.Close()
	testutil.AssertStatusCode(t, first, http.StatusOK)

	second := postJSON(t, ts.APIURL("/auth/resend-verification"), map[string]string{
		"email": "limited@example.com",
	}, "")
	defer second.Body.Close()

	testutil.AssertStatusCode(t, second, http.StatusTooManyRequests)
	assert.NotEmpty(t, second.Header.Get("Retry-After"))
}
