package telegram

import (
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/suspectuso/gym-storefront/internal/catalog"
)

const buyPrefix = "buy_"

// Button labels. They double as text triggers, see commandTriggers.
const (
	labelInfo         = "📋 Business Info"
	labelHours        = "🕒 Opening Hours"
	labelContact      = "📞 Contact"
	labelPackages     = "💪 Membership Packages"
	labelShareContact = "Share Contact 📞"
)

// MenuKeyboard returns the main menu reply keyboard
func MenuKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{Text: labelInfo},
				{Text: labelHours},
			},
			{
				{Text: labelContact},
				{Text: labelPackages},
			},
		},
		ResizeKeyboard: true,
	}
}

// PackagesKeyboard returns one buy button per package
func PackagesKeyboard(packages []catalog.Package, currency string) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(packages))
	for _, p := range packages {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: fmt.Sprintf("%s (%d %s)", p.Name, p.Price, currency), CallbackData: buyPrefix + p.ID},
		})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ContactKeyboard returns a single contact-sharing button
func ContactKeyboard() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{
				{Text: labelShareContact, RequestContact: true},
			},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}
