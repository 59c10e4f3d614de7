package ql

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFieldRef(t *testing.T) {
	tests := []struct {
		text string
		want FieldRef
	}{
		{"service", FieldRef{Base: "service"}},
		{"attrs.user", FieldRef{Base: "attrs", Path: []string{"user"}}},
		{"attrs.user.id", FieldRef{Base: "attrs", Path: []string{"user", "id"}}},
		// Quoted segments keep their quotes so a literal dot survives
		// segmentation; encoders strip them.
		{`attrs."user.id"`, FieldRef{Base: "attrs", Path: []string{`"user.id"`}}},
		{`attrs.'user.id'.raw`, FieldRef{Base: "attrs", Path: []string{`'user.id'`, "raw"}}},
		// Empty segments are dropped.
		{"a..b", FieldRef{Base: "a", Path: []string{"b"}}},
		{"a.", FieldRef{Base: "a"}},
		{".a", FieldRef{Base: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseFieldRef(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFieldRef(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestFieldRefString(t *testing.T) {
	f := FieldRef{Base: "attrs", Path: []string{"user", "id"}}
	if f.String() != "attrs.user.id" {
		t.Errorf("expected dotted form, got %q", f.String())
	}
	if !f.IsNested() {
		t.Errorf("expected nested")
	}
	if (FieldRef{Base: "level"}).IsNested() {
		t.Errorf("plain reference must not be nested")
	}
}

func TestUnquoteSegment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"user.id"`, "user.id"},
		{`'user.id'`, "user.id"},
		{"plain", "plain"},
		{`"mismatched'`, `"mismatched'`},
		{`"`, `"`},
	}
	for _, tt := range tests {
		if got := unquoteSegment(tt.in); got != tt.want {
			t.Errorf("unquoteSegment(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}
