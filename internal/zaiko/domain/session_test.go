package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	t.Run("rejects subjects with no grants", func(t *testing.T) {
		_, err := NewSession("turetek", nil)
		require.ErrorIs(t, err, ErrNoGrants)

		_, err = NewSession("turetek", map[string]Permission{})
		require.ErrorIs(t, err, ErrNoGrants)
	})

	t.Run("prefers the default club when granted", func(t *testing.T) {
		s, err := NewSession("turetek", map[string]Permission{
			"aaa-first": PermissionReadWrite,
			DefaultClub: PermissionRead,
			"spexet":    PermissionReadWrite,
		})
		require.NoError(t, err)
		require.Equal(t, DefaultClub, s.ActiveClub)
		require.Equal(t, PermissionRead, s.ActivePermission)
	})

	t.Run("falls back to smallest club name", func(t *testing.T) {
		s, err := NewSession("turetek", map[string]Permission{
			"spexet":    PermissionRead,
			"sektionen": PermissionReadWrite,
		})
		require.NoError(t, err)
		require.Equal(t, "sektionen", s.ActiveClub)
		require.Equal(t, PermissionReadWrite, s.ActivePermission)
	})
}

func TestSetActiveClub(t *testing.T) {
	t.Parallel()

	newSession := func(t *testing.T) *Session {
		s, err := NewSession("turetek", map[string]Permission{
			DefaultClub: PermissionRead,
			"spexet":    PermissionReadWrite,
		})
		require.NoError(t, err)
		return s
	}

	t.Run("switches club and permission together", func(t *testing.T) {
		s := newSession(t)
		require.NoError(t, s.SetActiveClub("spexet"))
		require.Equal(t, "spexet", s.ActiveClub)
		require.Equal(t, PermissionReadWrite, s.ActivePermission)
	})

	t.Run("leaves the session untouched on unknown club", func(t *testing.T) {
		s := newSession(t)
		require.ErrorIs(t, s.SetActiveClub("dkm"), ErrNotGranted)
		require.Equal(t, DefaultClub, s.ActiveClub)
		require.Equal(t, PermissionRead, s.ActivePermission)
	})
}

func TestSessionClubs(t *testing.T) {
	t.Parallel()

	s, err := NewSession("turetek", map[string]Permission{
		"spexet":    PermissionReadWrite,
		DefaultClub: PermissionRead,
		"dkm":       PermissionRead,
	})
	require.NoError(t, err)

	clubs := s.Clubs()
	require.Equal(t, []Club{
		{Name: "dkm", Permission: PermissionRead},
		{Name: DefaultClub, Permission: PermissionRead},
		{Name: "spexet", Permission: PermissionReadWrite},
	}, clubs)
}
