package util

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPasswordFromPipe(t *testing.T) {
	pw, err := ReadPassword(strings.NewReader("hunter2\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	_, err = ReadPassword(strings.NewReader(""))
	assert.ErrorIs(t, err, io.EOF)
}
