package gate_test

import (
	"testing"

	"github.com/ellsondrew-png/inventory-system-tml/gate"
)

func TestParsePermission(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
		want gate.Permission
	}{
		{"invoice:create", true, "invoice:create"},
		{"*:*", true, gate.PermissionSuperAdmin},
		{"stock", false, ""},
		{":view", false, ""},
		{"stock:", false, ""},
	}
	for _, c := range cases {
		t.Run(c.code, func(t *testing.T) {
			got, ok := gate.ParsePermission(c.code)
			if ok != c.ok || got != c.want {
				t.Fatalf("ParsePermission(%q) = %q, %v", c.code, got, ok)
			}
		})
	}
}

func TestPermissionParse(t *testing.T) {
	res, act := gate.Permission("delivery_note:view").Parse()
	if res != "delivery_note" || act != gate.ActionView {
		t.Fatalf("got %q %q", res, act)
	}
	res, act = gate.Permission("invalid").Parse()
	if res != "" || act != "" {
		t.Fatalf("expected empty parse, got %q %q", res, act)
	}
}

func TestPermissionMatches(t *testing.T) {
	cases := []struct {
		granted   gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"quotation:create", "quotation:create", true},
		{"quotation:create", "quotation:delete", false},
		{"quotation:create", "invoice:create", false},
		{gate.PermissionSuperAdmin, "credit_note:delete", true},
		{"stock:*", "stock:create", true},
		{"stock:*", "product:create", false},
		{"stock:*", gate.PermissionSuperAdmin, false},
	}
	for _, c := range cases {
		if got := c.granted.Matches(c.requested); got != c.want {
			t.Errorf("%s matches %s = %v, want %v", c.granted, c.requested, got, c.want)
		}
	}
}
