package validation

import (
	"errors"
	"testing"
)

func TestIsEmail(t *testing.T) {
	valids := []string{"a@x.com", "first.last+tag@sub.example.org"}
	for _, v := range valids {
		if !IsEmail(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	invalids := []string{"", "plain", "a@", "@x.com", "a b@x.com"}
	for _, v := range invalids {
		if IsEmail(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidMobile(t *testing.T) {
	for _, v := range []string{"+5491122334455", "1234567"} {
		if !ValidMobile(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	for _, v := range []string{"", "+0123456", "12-34", "123456", "+1234567890123456"} {
		if ValidMobile(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

func TestValidCode(t *testing.T) {
	if !ValidCode("000123") {
		t.Fatal("expected zero-padded code to be valid")
	}
	for _, v := range []string{"", "12a456", "123", " 123456"} {
		if ValidCode(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}

type sample struct {
	Email  string `json:"email" validate:"required,email"`
	Mobile string `json:"mobile,omitempty" validate:"omitempty,mobile"`
	Role   string `json:"role" validate:"required,role"`
}

func TestStruct_FieldErrorsUseJSONNames(t *testing.T) {
	err := Struct(sample{Email: "nope", Mobile: "12", Role: "root"})
	var fe *FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FieldErrors, got %T", err)
	}
	for _, k := range []string{"email", "mobile", "role"} {
		if _, ok := fe.Fields[k]; !ok {
			t.Fatalf("missing field %q in %v", k, fe.Fields)
		}
	}
	if got := fe.Error(); got == "" {
		t.Fatal("empty error message")
	}

	if err := Struct(sample{Email: "a@x.com", Role: "member"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
