package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assetgrip/internal/source"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func defaultWindowOptions() WindowOptions {
	return WindowOptions{Count: 100, ItemHeight: 50, ContainerHeight: 400, Buffer: 5}
}

func TestRenderWindowGolden(t *testing.T) {
	tests := []struct {
		name string
		opts func(*WindowOptions)
	}{
		{"window", func(o *WindowOptions) { o.Offset = 1000 }},
		{"window_query", func(o *WindowOptions) { o.Query = "dell" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := defaultWindowOptions()
			tt.opts(&opts)
			assets, err := opts.assets()
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, RenderWindow(&buf, assets, opts))
			newGoldie(t).Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestRenderWindowRejectsBadGeometry(t *testing.T) {
	opts := defaultWindowOptions()
	opts.ItemHeight = 0
	err := RenderWindow(&bytes.Buffer{}, source.GenerateCatalog(3), opts)
	assert.Error(t, err)
}

func TestRenderWindowEmpty(t *testing.T) {
	opts := defaultWindowOptions()
	opts.Offset = 300

	var buf bytes.Buffer
	require.NoError(t, RenderWindow(&buf, nil, opts))
	assert.Contains(t, buf.String(), "range: 0-0 of 0")
	assert.Contains(t, buf.String(), "totalHeight: 0")
}

func TestWindowCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	require.NoError(t, source.WriteYAML(path, source.GenerateCatalog(3)))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"window", "--from", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "range: 0-3 of 3")
	assert.Contains(t, out.String(), "   0 LIC  Windows 11 Pro Microsoft")

	cmd = NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"window", "--count=-1"})
	assert.ErrorContains(t, cmd.Execute(), "must not be negative")
}
