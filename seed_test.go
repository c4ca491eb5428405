package chatfs

import (
	"testing"

	"github.com/brettbedarf/chatfs/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedSamples(t *testing.T) {
	t.Parallel()

	ns := filesystem.NewNamespace()

	assert.Equal(t, len(Samples), SeedSamples(ns))

	content, err := ns.ReadFile("/documents/work/report.docx")
	require.NoError(t, err)
	assert.Equal(t, "Work report content.", content)

	info, err := ns.Stat("/empty_folder")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSeedSamples_Repeat(t *testing.T) {
	t.Parallel()

	ns := filesystem.NewNamespace()
	require.NoError(t, ns.CreateFile("/readme.txt", "mine"))

	created := SeedSamples(ns)

	assert.Equal(t, len(Samples)-1, created)
	content, err := ns.ReadFile("/readme.txt")
	require.NoError(t, err)
	assert.Equal(t, "mine", content, "seeding must not overwrite existing files")
	assert.Equal(t, 0, SeedSamples(ns))
}
