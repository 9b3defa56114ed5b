package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTrackCmdFlags(t *testing.T) {
	cmd := NewTrackCmd()

	assert.Equal(t, "track", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("schedule"))
}
