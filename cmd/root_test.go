package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout and returns the captured output
func captureOutput(f func()) string {
	oldStdout := os.Stdout

	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, err := io.Copy(&buf, r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error copying output: %v\n", err)
	}

	return buf.String()
}

func TestExecuteVersion(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()
	os.Args = []string{"vsireport", "version"}

	var err error
	out := captureOutput(func() {
		err = Execute()
	})

	require.NoError(t, err)
	assert.Contains(t, out, "vsireport")
}

func TestExecuteInvalidCommand(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()
	os.Args = []string{"vsireport", "no-such-command"}

	assert.Error(t, Execute())
}
