package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCoversProduct(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
		nums  []int
	}{
		{name: "default", sizes: DefaultAxis, nums: DefaultAxis},
		{name: "uneven", sizes: []int{64, 128, 256}, nums: []int{1, 2}},
		{name: "single", sizes: []int{1024}, nums: []int{1000}},
		{name: "empty sizes", sizes: nil, nums: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := Generate(tt.sizes, tt.nums)
			require.Len(t, pairs, len(tt.sizes)*len(tt.nums))

			seen := make(map[Pair]int, len(pairs))
			for _, p := range pairs {
				seen[p]++
			}

			for _, size := range tt.sizes {
				for _, num := range tt.nums {
					p := Pair{Size: size, Num: num}
					assert.Equal(t, 1, seen[p], "pair %+v", p)
				}
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	assert.Equal(t, Generate(DefaultAxis, DefaultAxis), Generate(DefaultAxis, DefaultAxis))
}

func TestGenerateOrderSizesOutermost(t *testing.T) {
	want := []Pair{
		{Size: 64, Num: 1},
		{Size: 64, Num: 2},
		{Size: 128, Num: 1},
		{Size: 128, Num: 2},
	}

	assert.Equal(t, want, Generate([]int{64, 128}, []int{1, 2}))
}

func TestExpand(t *testing.T) {
	pairs := Generate([]int{64}, []int{8, 16})

	configs := Expand(Hardware, []string{"aesA", "aesB"}, pairs, 5)
	require.Len(t, configs, 4)

	assert.Equal(t, "aesA", configs[0].Target)
	assert.Equal(t, "aesB", configs[2].Target)

	for _, c := range configs {
		assert.Equal(t, Hardware, c.Backend)
		assert.Equal(t, 5, c.Runs)
	}
}

func TestExpandNoTargets(t *testing.T) {
	configs := Expand(Software, nil, Generate([]int{64}, []int{8}), 1)
	require.Len(t, configs, 1)
	assert.Empty(t, configs[0].Target)
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{"software", Software, false},
		{"HW", Hardware, false},
		{"hardware", Hardware, false},
		{"gpu", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseBackend(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "ParseBackend(%q)", tt.input)
			continue
		}

		require.NoError(t, err, "ParseBackend(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseBackend(%q)", tt.input)
	}
}
