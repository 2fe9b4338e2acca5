package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	emailsvc "github.com/trezcool/shule/services/email"
)

func Test_authApi_register(t *testing.T) {
	resetDB(t)
	emailsvc.SentMessages = emailsvc.SentMessages[:0]

	createStudent(t, "Jane Mwamba", "jane@test.cd", "Str0ngPa$$")

	tests := []httpTest{
		{
			name: "empty payload", method: http.MethodPost, path: "/auth/register",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid email", method: http.MethodPost, path: "/auth/register",
			body:     marchallObj(t, map[string]string{"full_name": "Bob", "email": "nope", "password": "Str0ngPa$$"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "short password", method: http.MethodPost, path: "/auth/register",
			body:     marchallObj(t, map[string]string{"full_name": "Bob", "email": "bob@test.cd", "password": "short"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/auth/register",
			body:     marchallObj(t, map[string]string{"full_name": "Jane Again", "email": "jane@test.cd", "password": "Str0ngPa$$"}),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Message: "a student with this email already exists"}),
		},
		{
			name: "duplicate email is case-insensitive", method: http.MethodPost, path: "/auth/register",
			body:     marchallObj(t, map[string]string{"full_name": "Jane Again", "email": "JANE@Test.CD", "password": "Str0ngPa$$"}),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Message: "a student with this email already exists"}),
		},
		{
			name: "ok", method: http.MethodPost, path: "/auth/register",
			body:     marchallObj(t, map[string]string{"full_name": "Bob Ilunga", "email": "bob@test.cd", "password": "Str0ngPa$$"}),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}

			if tt.wantCode == http.StatusCreated {
				var resp map[string]interface{}
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp["email"] != "bob@test.cd" {
					t.Errorf("email = %v; want bob@test.cd", resp["email"])
				}
				if _, ok := resp["password"]; ok {
					t.Error("password leaked in response")
				}

				std, err := stdRepo.GetStudentByEmail(context.Background(), "bob@test.cd")
				if err != nil {
					t.Fatalf("GetStudentByEmail(): %v", err)
				}
				if err = std.CheckPassword("Str0ngPa$$"); err != nil {
					t.Error("stored password hash does not match")
				}

				// welcome email
				if len(emailsvc.SentMessages) != 1 {
					t.Fatalf("SentMessages = %d; want 1", len(emailsvc.SentMessages))
				}
				if to := emailsvc.SentMessages[0].To[0].Address; to != "bob@test.cd" {
					t.Errorf("welcome email recipient = %s; want bob@test.cd", to)
				}
			}
		})
	}
}

func Test_authApi_login(t *testing.T) {
	resetDB(t)

	createStudent(t, "Jane Mwamba", "jane@test.cd", "Str0ngPa$$")

	tests := []httpTest{
		{
			name: "unknown email", method: http.MethodPost, path: "/auth/login",
			body:     marchallObj(t, map[string]string{"email": "ghost@test.cd", "password": "Str0ngPa$$"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errBadCredsResp),
		},
		{
			name: "bad password", method: http.MethodPost, path: "/auth/login",
			body:     marchallObj(t, map[string]string{"email": "jane@test.cd", "password": "nope nope"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errBadCredsResp),
		},
		{
			name: "missing fields", method: http.MethodPost, path: "/auth/login",
			body: []byte(`{}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "ok", method: http.MethodPost, path: "/auth/login",
			body:     marchallObj(t, map[string]string{"email": "jane@test.cd", "password": "Str0ngPa$$"}),
			wantCode: http.StatusOK,
		},
		{
			name: "email is case-insensitive", method: http.MethodPost, path: "/auth/login",
			body:     marchallObj(t, map[string]string{"email": "JANE@test.cd", "password": "Str0ngPa$$"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}

			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp.AccessToken == "" || resp.RefreshToken == "" {
					t.Errorf("missing tokens in response: %s", rec.Body.String())
				}

				// the access token must grant access to a protected route
				req, rec := newAuthRequest(http.MethodGet, "/courses", resp.AccessToken)
				app.ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("access token rejected: code = %v; body %s", rec.Code, rec.Body.String())
				}

				// the refresh token must not
				req, rec = newAuthRequest(http.MethodGet, "/courses", resp.RefreshToken)
				app.ServeHTTP(rec, req)
				if rec.Code != http.StatusUnauthorized {
					t.Errorf("refresh token accepted on a resource route: code = %v", rec.Code)
				}
			}
		})
	}
}

func Test_authApi_loginAdmin(t *testing.T) {
	resetDB(t)

	createAdmin(t, "boss", true)
	createAdmin(t, "sleeper", false)

	tests := []httpTest{
		{
			name: "unknown username", method: http.MethodPost, path: "/auth/login/admin",
			body:     marchallObj(t, map[string]string{"username": "ghost", "password": "Str0ngPa$$"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errBadCredsResp),
		},
		{
			name: "bad password", method: http.MethodPost, path: "/auth/login/admin",
			body:     marchallObj(t, map[string]string{"username": "boss", "password": "nope nope"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errBadCredsResp),
		},
		{
			name: "ok", method: http.MethodPost, path: "/auth/login/admin",
			body:     marchallObj(t, map[string]string{"username": "boss", "password": "Str0ngPa$$"}),
			wantCode: http.StatusOK,
		},
		{
			name: "deactivated admin may still log in", method: http.MethodPost, path: "/auth/login/admin",
			body:     marchallObj(t, map[string]string{"username": "sleeper", "password": "Str0ngPa$$"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_authApi_refreshToken(t *testing.T) {
	resetDB(t)

	std := createStudent(t, "Jane Mwamba", "jane@test.cd", "Str0ngPa$$")
	adm := createAdmin(t, "boss", true)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/auth/refresh",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "access token rejected", method: http.MethodPost, path: "/auth/refresh",
			token:    getToken(t, KindStudent, std.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNeedRefreshTok),
		},
		{
			name: "subject no longer exists", method: http.MethodPost, path: "/auth/refresh",
			token:    getRefreshToken(t, KindStudent, std.ID+100),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthedResp),
		},
		{
			name: "student refresh ok", method: http.MethodPost, path: "/auth/refresh",
			token: getRefreshToken(t, KindStudent, std.ID), wantCode: http.StatusOK,
		},
		{
			name: "admin refresh ok", method: http.MethodPost, path: "/auth/refresh",
			token: getRefreshToken(t, KindAdmin, adm.ID), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}

			if tt.wantCode == http.StatusOK {
				var resp RefreshResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if resp.AccessToken == "" {
					t.Errorf("missing access_token in response: %s", rec.Body.String())
				}

				req, rec := newAuthRequest(http.MethodGet, "/courses", resp.AccessToken)
				app.ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("refreshed token rejected: code = %v; body %s", rec.Code, rec.Body.String())
				}
			}
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	resetDB(t)

	std := createStudent(t, "Jane Mwamba", "jane@test.cd", "Str0ngPa$$")

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/auth/logout",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "refresh token rejected", method: http.MethodPost, path: "/auth/logout",
			token:    getRefreshToken(t, KindStudent, std.ID),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthedResp),
		},
		{
			name: "ok", method: http.MethodPost, path: "/auth/logout",
			token:    getToken(t, KindStudent, std.ID),
			wantCode: http.StatusOK, wantData: marchallObj(t, httpErr{Message: "logged out"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
