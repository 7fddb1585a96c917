package main

import (
	"go/format"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandSourcesFormatted(t *testing.T) {
	t.Parallel()
	files := []string{"root.go", "serve.go", "check.go", "hashkey.go", "version.go"}

	for _, name := range files {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			src, err := os.ReadFile(filepath.Clean(name))
			require.NoError(t, err)

			formatted, err := format.Source(src)
			require.NoError(t, err)
			assert.Equal(t, string(formatted), string(src), "%s is not gofmt-formatted", name)
		})
	}
}
