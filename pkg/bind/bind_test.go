package bind_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukaanlabs/dukaan/pkg/bind"
)

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestJSONValid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.com","password":"secret"}`))

	var in loginInput
	errs, err := bind.JSON(req, &in)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if in.Email != "a@b.com" {
		t.Errorf("got %q", in.Email)
	}
}

func TestJSONValidationErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope"}`))

	var in loginInput
	errs, err := bind.JSON(req, &in)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, ok := errs["email"]; !ok {
		t.Error("expected email error")
	}
	if _, ok := errs["password"]; !ok {
		t.Error("expected password error")
	}
}

func TestJSONMalformedBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))

	var in loginInput
	if _, err := bind.JSON(req, &in); err == nil {
		t.Error("malformed body must error")
	}
}
