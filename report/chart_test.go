package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLayout(t *testing.T) {
	cfg, in := testInput(t)
	cmps := in.Compare(cfg.Axes(), []string{"aes128gcm"})

	r := NewRenderer(cfg.PlotDir, 2, discardLogger())
	n, err := r.Render(context.Background(), in, cmps)
	require.NoError(t, err)

	base := filepath.Join(cfg.PlotDir, "aes128gcm")

	want := []string{
		"throughput/aes128gcm_64_fixed_num_throughput.png",
		"throughput/aes128gcm_64_fixed_num_throughput_factor.png",
		"message_rate/aes128gcm_64_fixed_num_message_rate.png",
		"message_rate/aes128gcm_64_fixed_num_message_rate_factor.png",
		"throughput/aes128gcm_64_fixed_size_throughput.png",
		"throughput/aes128gcm_64_fixed_size_throughput_factor.png",
		"message_rate/aes128gcm_64_fixed_size_message_rate.png",
		"message_rate/aes128gcm_64_fixed_size_message_rate_factor.png",
		"throughput/aes128gcm_128_fixed_size_throughput.png",
		"message_rate/aes128gcm_128_fixed_size_message_rate.png",
		"histograms/software_aes128gcm_64_64.png",
		"histograms/software_aes128gcm_64_128.png",
		"histograms/software_aes128gcm_1000_1024.png",
		"histograms/hardware_aes128gcm_kernel_64_64.png",
	}

	for _, name := range want {
		assert.FileExists(t, filepath.Join(base, name))
	}
	assert.Equal(t, len(want), n)
}

func TestRenderSkipsEmptySeries(t *testing.T) {
	cfg, in := testInput(t)
	cmps := in.Compare(cfg.Axes(), []string{"aes128gcm"})

	_, err := NewRenderer(cfg.PlotDir, 1, discardLogger()).Render(context.Background(), in, cmps)
	require.NoError(t, err)

	base := filepath.Join(cfg.PlotDir, "aes128gcm")

	// No data at num=128 for either backend.
	assert.NoFileExists(t, filepath.Join(base, "throughput", "aes128gcm_128_fixed_num_throughput.png"))
	// size=128 has software only, so its factor is undefined everywhere.
	assert.NoFileExists(t, filepath.Join(base, "throughput", "aes128gcm_128_fixed_size_throughput_factor.png"))

	for _, sub := range []string{"histograms", "throughput", "message_rate"} {
		info, err := os.Stat(filepath.Join(base, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestRenderCancelled(t *testing.T) {
	cfg, in := testInput(t)
	cmps := in.Compare(cfg.Axes(), in.Algorithms(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRenderer(cfg.PlotDir, 1, discardLogger()).Render(ctx, in, cmps)
	assert.ErrorIs(t, err, context.Canceled)
}
