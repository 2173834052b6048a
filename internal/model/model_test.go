package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatformTag(t *testing.T) {
	t.Parallel()

	tag, err := ParsePlatformTag("android")
	require.NoError(t, err)
	assert.Equal(t, PlatformAndroid, tag)

	_, err = ParsePlatformTag("playstation")
	require.Error(t, err)
}

func TestBodyForSelectsRepresentation(t *testing.T) {
	t.Parallel()

	text := BodyFor([]byte("plain text\n"))
	assert.True(t, text.IsText)

	binary := BodyFor([]byte{0xff, 0xfe, 0x00, 0x89})
	assert.False(t, binary.IsText)
	assert.Equal(t, []byte{0xff, 0xfe, 0x00, 0x89}, binary.Bytes)
}

func TestMigrationResultConflictPaths(t *testing.T) {
	t.Parallel()

	result := &MigrationResult{
		MergeResults: []MergeOutcome{
			{LocalPath: "ios/Podfile", HasConflict: true},
			{LocalPath: "android/build.gradle", HasConflict: false},
			{LocalPath: "android/settings.gradle", HasConflict: true},
		},
	}

	require.True(t, result.HasConflicts())
	assert.Equal(t, []string{"android/settings.gradle", "ios/Podfile"}, result.ConflictPaths())
}

func TestCleanRelative(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "android/build.gradle", want: "android/build.gradle"},
		{name: "redundant segments", input: "./android//app", want: "android/app"},
		{name: "absolute", input: "/etc/passwd", wantErr: true},
		{name: "escapes root", input: "../secrets", wantErr: true},
		{name: "empty", input: ".", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := CleanRelative(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
