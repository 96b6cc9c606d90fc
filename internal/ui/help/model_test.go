package help

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CrystalKhadka/nexus-collab-frontend-sub000/internal/keys"
)

func TestViewGroupsBindingsByArea(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 40)
	out := m.View()

	for _, heading := range []string{"Navigation", "Views", "Board", "Chat"} {
		require.Contains(t, out, heading)
	}
	require.Contains(t, out, "grab/drop task")
	require.Contains(t, out, "next conversation")
}
