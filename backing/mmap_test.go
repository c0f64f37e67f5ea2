package backing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMmapRoundTrip(t *testing.T) {
	region, err := Mmap(4096)
	require.NoError(t, err)
	defer region.Close()

	mem := region.Bytes()
	require.Len(t, mem, 4096)

	mem[0] = 0xAB
	mem[4095] = 0xCD
	require.Equal(t, byte(0xAB), region.Bytes()[0])
	require.Equal(t, byte(0xCD), region.Bytes()[4095])
}

func TestMmapCloseIsIdempotent(t *testing.T) {
	region, err := Mmap(4096)
	require.NoError(t, err)

	require.NoError(t, region.Close())
	require.NoError(t, region.Close())
}

func TestMmapRejectsNonPositiveSize(t *testing.T) {
	_, err := Mmap(0)
	require.Error(t, err)

	_, err = Mmap(-1)
	require.Error(t, err)
}
