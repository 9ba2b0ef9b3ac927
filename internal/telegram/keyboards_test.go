package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suspectuso/gym-storefront/internal/catalog"
)

func TestPackagesKeyboard(t *testing.T) {
	kb := PackagesKeyboard(catalog.Default().List(), "ETB")

	require.Len(t, kb.InlineKeyboard, 3)
	for _, row := range kb.InlineKeyboard {
		require.Len(t, row, 1)
	}
	assert.Equal(t, "Premium Annual (10000 ETB)", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "buy_premium", kb.InlineKeyboard[1][0].CallbackData)
	assert.Equal(t, "Day Pass (100 ETB)", kb.InlineKeyboard[2][0].Text)
	assert.Equal(t, "buy_trial", kb.InlineKeyboard[2][0].CallbackData)
}

func TestMenuKeyboardLabelsAreTriggers(t *testing.T) {
	kb := MenuKeyboard()

	for _, row := range kb.Keyboard {
		for _, button := range row {
			_, ok := parseCommand(button.Text)
			assert.True(t, ok, "label %q has no command", button.Text)
		}
	}
	assert.True(t, kb.ResizeKeyboard)
}

func TestContactKeyboard(t *testing.T) {
	kb := ContactKeyboard()

	require.Len(t, kb.Keyboard, 1)
	require.Len(t, kb.Keyboard[0], 1)
	assert.True(t, kb.Keyboard[0][0].RequestContact)
	assert.True(t, kb.OneTimeKeyboard)
}
