package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinkMethod(t *testing.T) {
	tests := []struct {
		in   string
		want LinkMethod
	}{
		{"symlink", LinkSymlink},
		{"hardlink", LinkHardlink},
		{"copy", LinkCopy},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLinkMethod(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}

	_, err := ParseLinkMethod("Copy")
	assert.ErrorIs(t, err, ErrInvalidLinkMethod)
	assert.Equal(t, "unknown", LinkMethod(9).String())
}

func TestLinkMethod_UnmarshalTextKeepsValueOnEmpty(t *testing.T) {
	m := LinkCopy
	require.NoError(t, m.UnmarshalText(nil))
	assert.Equal(t, LinkCopy, m)

	assert.Error(t, m.UnmarshalText([]byte("teleport")))
}
