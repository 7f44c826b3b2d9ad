package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	authsvc "github.com/dmuriuki/agrimarket-backend/internal/auth"
	"github.com/dmuriuki/agrimarket-backend/internal/users"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
)

type testRegisterService struct {
	registerFn func(ctx context.Context, input authsvc.RegisterRequest) (*authsvc.AuthResponse, error)
}

func (s *testRegisterService) Register(ctx context.Context, input authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, input)
	}
	return &authsvc.AuthResponse{}, nil
}

func TestAuthRegisterSuccess(t *testing.T) {
	var got authsvc.RegisterRequest
	svc := &testRegisterService{
		registerFn: func(ctx context.Context, input authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
			got = input
			return &authsvc.AuthResponse{
				AccessToken: "token",
				ExpiresIn:   3600,
				User:        &users.UserDTO{ID: uuid.New()},
			}, nil
		},
	}

	body := `{
		"first_name": "Peter",
		"last_name": "Kamau",
		"email": "peter@example.com",
		"password": "longenough",
		"role": "farmer",
		"county": "Meru"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AuthRegister(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.Email != "peter@example.com" {
		t.Fatalf("unexpected email %q", got.Email)
	}
	if got.Role != enums.UserRoleFarmer {
		t.Fatalf("unexpected role %s", got.Role)
	}
}

func TestAuthRegisterRejectsShortPassword(t *testing.T) {
	svc := &testRegisterService{
		registerFn: func(ctx context.Context, input authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}

	body := `{
		"first_name": "Peter",
		"last_name": "Kamau",
		"email": "peter@example.com",
		"password": "short",
		"role": "farmer"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AuthRegister(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterRejectsInvalidEmail(t *testing.T) {
	body := `{
		"first_name": "Peter",
		"last_name": "Kamau",
		"email": "not-an-email",
		"password": "longenough",
		"role": "buyer"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	AuthRegister(&testRegisterService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
