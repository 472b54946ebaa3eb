package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/pagealloc/internal/utils"
)

type testFlags int32

func TestFlagsToString(t *testing.T) {
	mapping := utils.NewFlagStringMapping[testFlags]()
	mapping.Register(1, "First")
	mapping.Register(4, "Third")

	require.Equal(t, "None", mapping.FlagsToString(0))
	require.Equal(t, "First", mapping.FlagsToString(1))
	require.Equal(t, "First|Third", mapping.FlagsToString(5))
	require.Equal(t, "Third|UnknownFlags(0xa)", mapping.FlagsToString(14))
}
