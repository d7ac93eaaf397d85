package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"ADMIN", RoleAdmin, true},
		{"  Manager ", RoleManager, true},
		{"staff", RoleStaff, true},
		{"owner", "", false},
		{"", "", false},
		{"superadmin", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeRoleCoercesUnknownToStaff(t *testing.T) {
	if got := NormalizeRole("owner"); got != RoleStaff {
		t.Errorf("NormalizeRole(owner) = %q, want STAFF", got)
	}
	if got := NormalizeRole("manager"); got != RoleManager {
		t.Errorf("NormalizeRole(manager) = %q, want MANAGER", got)
	}
	if got := NormalizeRole(""); got != RoleStaff {
		t.Errorf("NormalizeRole(\"\") = %q, want STAFF", got)
	}
}

func TestDisplayName(t *testing.T) {
	first := "A"
	last := "B"
	if got := DisplayName(&first, &last); got == nil || *got != "A B" {
		t.Errorf("DisplayName(A, B) = %v, want A B", got)
	}
	if got := DisplayName(&first, nil); got == nil || *got != "A" {
		t.Errorf("DisplayName(A, nil) = %v, want A", got)
	}
	if got := DisplayName(nil, nil); got != nil {
		t.Errorf("DisplayName(nil, nil) = %q, want nil", *got)
	}
}

func TestOptionalStringDistinguishesAbsentAndNull(t *testing.T) {
	var dst struct {
		Email OptionalString `json:"email"`
		Name  OptionalString `json:"name"`
		Image OptionalString `json:"image"`
	}
	body := []byte(`{"name": null, "image": "  x  "}`)
	if err := json.Unmarshal(body, &dst); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dst.Email.Set {
		t.Error("absent key should not be marked Set")
	}
	if !dst.Name.Set || dst.Name.Value != nil {
		t.Errorf("explicit null should be Set with nil value, got %+v", dst.Name)
	}
	if !dst.Image.Set || dst.Image.Value == nil || *dst.Image.Value != "x" {
		t.Errorf("value should be Set and trimmed, got %+v", dst.Image)
	}
}

func TestOptionalTimeAcceptsMillisAndRFC3339(t *testing.T) {
	var dst struct {
		A OptionalTime `json:"a"`
		B OptionalTime `json:"b"`
		C OptionalTime `json:"c"`
	}
	body := []byte(`{"a": 1700000000000, "b": "2024-01-02T03:04:05Z", "c": "not a time"}`)
	if err := json.Unmarshal(body, &dst); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !dst.A.Set || dst.A.Value == nil || dst.A.Value.UnixMilli() != 1700000000000 {
		t.Errorf("epoch millis not parsed: %+v", dst.A)
	}
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !dst.B.Set || dst.B.Value == nil || !dst.B.Value.Equal(want) {
		t.Errorf("RFC3339 not parsed: %+v", dst.B)
	}
	if dst.C.Set {
		t.Errorf("unparseable value should behave as absent, got %+v", dst.C)
	}
}
