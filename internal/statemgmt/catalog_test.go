package statemgmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSaveAssignsSequentialIDs(t *testing.T) {
	c := NewCatalog()

	login := NewState("login", NewStateImage("logo", "login_logo"))
	home := NewState("home")
	require.NoError(t, c.Save(login))
	require.NoError(t, c.Save(home))

	assert.Equal(t, StateID(1), login.ID)
	assert.Equal(t, StateID(2), home.ID)

	got, ok := c.State(login.ID)
	require.True(t, ok)
	assert.Same(t, login, got)

	got, ok = c.StateByName("home")
	require.True(t, ok)
	assert.Same(t, home, got)
}

func TestCatalogRejectsDuplicateAndReservedNames(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.Save(NewState("settings")))

	assert.Error(t, c.Save(NewState("settings")))
	assert.Error(t, c.Save(NewState(UnknownStateName)))
	assert.Error(t, c.Save(NewState("")))
	assert.Error(t, c.Save(nil))
}

func TestCatalogAllStateNamesSorted(t *testing.T) {
	c := NewCatalog()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, c.Save(NewState(name)))
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, c.AllStateNames())
}

func TestNewStateStampsImageOwnership(t *testing.T) {
	img := NewStateImage("button", "submit_button")
	s := NewState("form", img)

	assert.Equal(t, "form", img.OwnerState)
	found, ok := s.Image("button")
	require.True(t, ok)
	assert.Same(t, img, found)

	_, ok = s.Image("missing")
	assert.False(t, ok)
}
