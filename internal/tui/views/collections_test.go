package views_test

import (
	"testing"

	"penumbra/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollections_InitialState(t *testing.T) {
	model := views.NewCollections([]string{"Default", "Raid"}, "Raid")

	assert.Equal(t, 1, model.Selected(), "cursor starts on the active collection")
	assert.Equal(t, 2, model.CollectionCount())
	assert.Contains(t, model.View(), "[active]")
}

func TestCollections_Switch(t *testing.T) {
	model := views.NewCollections([]string{"Default", "Raid"}, "Default")

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "already active")

	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, views.SwitchCollectionMsg{Name: "Raid"}, cmd())
}

func TestCollections_DeleteSkipsActive(t *testing.T) {
	model := views.NewCollections([]string{"Default", "Raid"}, "Default")

	_, cmd := model.Update(keyRune('d'))
	assert.Nil(t, cmd)

	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = next.Update(keyRune('d'))
	require.NotNil(t, cmd)
	assert.Equal(t, views.DeleteCollectionMsg{Name: "Raid"}, cmd())
}

func TestCollections_Create(t *testing.T) {
	tests := []struct {
		name string
		key  rune
		want views.CreateCollectionMsg
	}{
		{"plain", 'n', views.CreateCollectionMsg{Name: "PvP"}},
		{"inheriting", 'i', views.CreateCollectionMsg{Name: "PvP", Inherit: "Default"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var model tea.Model = views.NewCollections([]string{"Default"}, "Default")
			model, _ = model.Update(keyRune(tt.key))
			require.True(t, model.(views.Collections).IsCreating())

			for _, r := range "PvP" {
				model, _ = model.Update(keyRune(r))
			}
			model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
			require.NotNil(t, cmd)
			assert.Equal(t, tt.want, cmd())
			assert.False(t, model.(views.Collections).IsCreating())
		})
	}
}

func TestCollections_CreateCancelled(t *testing.T) {
	var model tea.Model = views.NewCollections(nil, "")
	model, _ = model.Update(keyRune('n'))
	assert.Contains(t, model.View(), "New collection name")

	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty names are not submitted")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, model.(views.Collections).IsCreating())
	assert.Contains(t, model.View(), "No collections stored")
}
