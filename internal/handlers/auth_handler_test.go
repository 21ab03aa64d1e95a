package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeRedirect(t *testing.T) {
	cases := []struct {
		target string
		want   string
	}{
		{target: "/dashboard/invoices", want: "/dashboard/invoices"},
		{target: "/dashboard/invoices?page=2&query=lee", want: "/dashboard/invoices?page=2&query=lee"},
		{target: "", want: "/dashboard"},
		{target: "dashboard", want: "/dashboard"},
		{target: "//evil.example", want: "/dashboard"},
		{target: "/\\evil.example", want: "/dashboard"},
		{target: "/\t/evil.example", want: "/dashboard"},
		{target: "/\n/evil.example", want: "/dashboard"},
		{target: "/\x7f/evil.example", want: "/dashboard"},
		{target: "https://evil.example/dashboard", want: "/dashboard"},
		{target: "javascript:alert(1)", want: "/dashboard"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			assert.Equal(t, tc.want, safeRedirect(tc.target, "/dashboard"))
		})
	}
}
