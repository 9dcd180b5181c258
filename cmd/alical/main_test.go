package main

import (
	"testing"
	"time"
)

func TestParseRequest(t *testing.T) {
	now := time.Date(2025, 10, 9, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name    string
		args    []string
		want    time.Time
		wantErr bool
	}{
		{name: "no args", want: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)},
		{name: "month", args: []string{"3"}, want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{name: "year", args: []string{"2027"}, want: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "year and month", args: []string{"2024", "12"}, want: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)},
		{name: "bad month", args: []string{"2024", "13"}, wantErr: true},
		{name: "not a number", args: []string{"okt"}, wantErr: true},
		{name: "too many", args: []string{"1", "2", "3"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRequest(tt.args, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseRequest(%v) = %v, want error", tt.args, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRequest(%v): %v", tt.args, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("parseRequest(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	if got := first("", "b"); got != "b" {
		t.Fatalf("first = %q, want b", got)
	}
	if got := first("a", "b"); got != "a" {
		t.Fatalf("first = %q, want a", got)
	}
	if got := first("", ""); got != "" {
		t.Fatalf("first = %q, want empty", got)
	}
}
