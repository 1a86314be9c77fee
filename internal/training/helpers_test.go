package training

import (
	"archive/zip"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func zipFile(t *testing.T, src, dst, name string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	out, err := os.Create(dst)
	require.NoError(t, err)
	zw := zip.NewWriter(out)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, out.Close())
}
