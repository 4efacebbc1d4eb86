package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateAtStop(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		stops []string
		want  string
	}{
		{"no stops", "Thought: hi", nil, "Thought: hi"},
		{"single stop", "Action Input: x\nObservation: fake", []string{"\nObservation:"}, "Action Input: x"},
		{"earliest wins", "a STOP2 b STOP1 c", []string{"STOP1", "STOP2"}, "a "},
		{"empty stop ignored", "abc", []string{""}, "abc"},
		{"absent stop", "abc", []string{"zzz"}, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateAtStop(tt.text, tt.stops))
		})
	}
}
