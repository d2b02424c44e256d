package results

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilenameKernel(t *testing.T) {
	key, err := ParseFilename("aes256gcm_kernel_1024_4096.csv")
	require.NoError(t, err)

	assert.Equal(t, Key{
		Algorithm: "aes256gcm",
		Kernel:    true,
		MsgNum:    1024,
		MsgSize:   4096,
	}, key)
}

func TestParseFilenameUnderscoredAlgorithm(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{
			name: "AES_128_CCM_16_encrypt_64_128.csv",
			want: Key{Algorithm: "AES_128_CCM_16_encrypt", MsgNum: 64, MsgSize: 128},
		},
		{
			name: "AES_128_CCM_16_encrypt_kernel_8192_64.csv",
			want: Key{Algorithm: "AES_128_CCM_16_encrypt", Kernel: true, MsgNum: 8192, MsgSize: 64},
		},
		{
			// Host-side transfer timings keep their suffix in the algorithm.
			name: "AES_256_GCM_encrypt_h2d_512_256.csv",
			want: Key{Algorithm: "AES_256_GCM_encrypt_h2d", MsgNum: 512, MsgSize: 256},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilename(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	algorithms := []string{"aes256gcm", "chacha20poly1305", "AES_128_GCM_decrypt"}
	values := []int{64, 1000, 8192}

	for _, alg := range algorithms {
		for _, kernel := range []bool{false, true} {
			for _, num := range values {
				for _, size := range values {
					want := Key{Algorithm: alg, Kernel: kernel, MsgNum: num, MsgSize: size}

					got, err := ParseFilename(want.Filename())
					require.NoError(t, err, want.Filename())
					assert.Equal(t, want, got)
				}
			}
		}
	}
}

func TestFilenameKernelSuffixedAlgorithm(t *testing.T) {
	k := Key{Algorithm: "x_kernel", MsgNum: 1, MsgSize: 2}
	require.Equal(t, "x_kernel_1_2.csv", k.Filename())

	got, err := ParseFilename(k.Filename())
	require.NoError(t, err)
	assert.Equal(t, Key{Algorithm: "x", Kernel: true, MsgNum: 1, MsgSize: 2}, got)
}

func TestParseFilenameMalformed(t *testing.T) {
	tests := []string{
		"aes.csv",
		"aes_64.csv",
		"aes_x_64.csv",
		"aes_64_y.csv",
		"aes_0_64.csv",
		"aes_64_-8.csv",
		"_64_128.csv",
		"_kernel_64_128.csv",
		"64_128.csv",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFilename(name)
			require.Error(t, err)

			var fe *FilenameError
			assert.True(t, errors.As(err, &fe), "want FilenameError, got %v", err)
		})
	}
}

func TestParseFilenameNotCSV(t *testing.T) {
	for _, name := range []string{"aes_64_128.txt", "sweep.prom", "aes_64_128.csv.tmp"} {
		_, err := ParseFilename(name)
		assert.ErrorIs(t, err, ErrNotCSV, name)
	}
}
