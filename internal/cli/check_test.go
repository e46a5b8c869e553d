package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpoolFlags(t *testing.T) {
	t.Run("empty means automatic mode", func(t *testing.T) {
		m, err := parseSpoolFlags(nil)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("assignments build an explicit mapping", func(t *testing.T) {
		m, err := parseSpoolFlags([]string{"0=12", "1=34"})
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, map[int]int{0: 0, 1: 1}, m.ToolToSlot)
		assert.Equal(t, map[int]int{0: 12, 1: 34}, m.SlotToSpool)
		assert.Empty(t, m.SlotGroups)
	})

	t.Run("whitespace tolerated", func(t *testing.T) {
		m, err := parseSpoolFlags([]string{" 2 = 7 "})
		require.NoError(t, err)
		assert.Equal(t, map[int]int{2: 7}, m.SlotToSpool)
	})

	tests := []struct {
		name  string
		flags []string
	}{
		{"missing separator", []string{"012"}},
		{"bad tool index", []string{"x=12"}},
		{"negative tool index", []string{"-1=12"}},
		{"bad spool id", []string{"0=abc"}},
		{"duplicate tool", []string{"0=12", "0=34"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSpoolFlags(tt.flags)
			assert.Error(t, err)
		})
	}
}
