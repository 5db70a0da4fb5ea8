package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotlist/slotlist-backend-sub000/internal/notification"
)

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := notification.LoadCatalog()
	require.NoError(t, err)

	// Every notification type the services emit must render.
	cases := []struct {
		typ  notification.Type
		data map[string]string
		want string
	}{
		{
			typ:  notification.TypeSlotAssigned,
			data: map[string]string{"slotTitle": "Squad Leader", "missionTitle": "Operation Anvil"},
			want: `You have been assigned to slot "Squad Leader" of mission "Operation Anvil".`,
		},
		{
			typ:  notification.TypeSlotUnassigned,
			data: map[string]string{"slotTitle": "Squad Leader", "missionTitle": "Operation Anvil"},
			want: `Your assignment to slot "Squad Leader" of mission "Operation Anvil" has been removed.`,
		},
		{
			typ:  notification.TypeMissionDeleted,
			data: map[string]string{"missionTitle": "Operation Anvil"},
			want: `The mission "Operation Anvil" you were registered for has been deleted.`,
		},
		{
			typ:  notification.TypeApplicationAccepted,
			data: map[string]string{"communityName": "Sel"},
			want: `Your application to the community "Sel" has been accepted.`,
		},
		{
			typ:  notification.TypeApplicationDenied,
			data: map[string]string{"communityName": "Sel"},
			want: `Your application to the community "Sel" has been denied.`,
		},
		{
			typ:  notification.TypePermissionGranted,
			data: map[string]string{"permission": "community.sel.leader"},
			want: `You have been granted the permission "community.sel.leader".`,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.typ), func(t *testing.T) {
			t.Parallel()

			title, message, err := catalog.Render(tc.typ, tc.data)
			require.NoError(t, err)
			assert.NotEmpty(t, title)
			assert.Equal(t, tc.want, message)
		})
	}
}

func TestCatalog_Render_Errors(t *testing.T) {
	t.Parallel()

	catalog, err := notification.LoadCatalog()
	require.NoError(t, err)

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		_, _, err := catalog.Render(notification.Type("mission.slot.exploded"), nil)
		assert.ErrorIs(t, err, notification.ErrUnknownTemplate)
	})

	t.Run("missing data key", func(t *testing.T) {
		t.Parallel()

		_, _, err := catalog.Render(notification.TypeSlotAssigned, map[string]string{"slotTitle": "Squad Leader"})
		require.Error(t, err)
	})
}
