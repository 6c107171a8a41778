package echoapi_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func Test_healthAPI(t *testing.T) {
	env := setup(t)

	code, resp := env.do(t, http.MethodGet, "/api/health", "", nil)
	checkCode(t, code, http.StatusOK, resp)
	if resp.Message != "ok" {
		t.Errorf("message = %q; want %q", resp.Message, "ok")
	}
}

func Test_healthAPI_dbDown(t *testing.T) {
	env := setup(t, func(context.Context) error { return errors.New("connection refused") })

	code, resp := env.do(t, http.MethodGet, "/api/health", "", nil)
	checkCode(t, code, http.StatusServiceUnavailable, resp)
}

func Test_authAPI_tokenRefresh(t *testing.T) {
	env := setup(t)
	_, token := env.createManager(t, "admin@test.cd")

	t.Run("auth required", func(t *testing.T) {
		code, resp := env.do(t, http.MethodPost, "/api/auth/token-refresh", "", nil)
		checkCode(t, code, http.StatusUnauthorized, resp)
	})

	t.Run("re-issues a working token", func(t *testing.T) {
		code, resp := env.do(t, http.MethodPost, "/api/auth/token-refresh", token, nil)
		checkCode(t, code, http.StatusOK, resp)

		var data struct {
			Token string `json:"token"`
		}
		decodeData(t, resp.Data, &data)
		if data.Token == "" {
			t.Fatal("no token returned")
		}

		// the fresh token must be accepted on a protected endpoint
		code, resp = env.do(t, http.MethodGet, "/api/managers", data.Token, nil)
		checkCode(t, code, http.StatusOK, resp)
	})
}
