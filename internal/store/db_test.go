package store

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWithSSLMode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@db:5432/app", "postgres://u:p@db:5432/app?sslmode=require"},
		{"postgres://u:p@db:5432/app?connect_timeout=5", "postgres://u:p@db:5432/app?connect_timeout=5&sslmode=require"},
		{"postgres://db/app?sslmode=disable", "postgres://db/app?sslmode=disable"},
		{"host=db user=app dbname=app", "host=db user=app dbname=app sslmode=require"},
	}
	for _, tt := range tests {
		if got := withSSLMode(tt.in); got != tt.want {
			t.Errorf("withSSLMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExceedsTarget(t *testing.T) {
	d := decimal.RequireFromString
	tests := []struct {
		saved, amount, target string
		want                  bool
	}{
		{"900", "100", "1000", false},
		{"900", "100.01", "1000", true},
		{"0", "5000", "1000", true},
		{"5000", "5000", "0", false},
	}
	for _, tt := range tests {
		if got := exceedsTarget(d(tt.saved), d(tt.amount), d(tt.target)); got != tt.want {
			t.Errorf("exceedsTarget(%s, %s, %s) = %v, want %v", tt.saved, tt.amount, tt.target, got, tt.want)
		}
	}
}
