package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{name: "pending", status: StatusPending, want: true},
		{name: "doing", status: StatusDoing, want: true},
		{name: "blocked", status: StatusBlocked, want: true},
		{name: "done", status: StatusDone, want: true},
		{name: "empty string rejected", status: "", want: false},
		{name: "unknown value rejected", status: "Cancelled", want: false},
		{name: "case sensitive", status: "pending", want: false},
		{name: "whitespace rejected", status: " Pending", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidStatus(tt.status))
		})
	}
}
