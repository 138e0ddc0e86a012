package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	buttons := []Button{DataButton("a", "1"), DataButton("b", "2"), DataButton("c", "3")}
	kb := Grid(buttons, 2)
	require.Len(t, kb, 2)
	require.Len(t, kb[0], 2)
	require.Len(t, kb[1], 1)
	require.Equal(t, "c", kb[1][0].Text)

	require.Len(t, Grid(buttons, 0), 3)
	require.Empty(t, Grid(nil, 2))
}

func TestChatTypeIsGroup(t *testing.T) {
	require.True(t, Group.IsGroup())
	require.True(t, Supergroup.IsGroup())
	require.False(t, Private.IsGroup())
	require.False(t, Channel.IsGroup())
}
