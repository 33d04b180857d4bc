package bot

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"promo-bot/internal/models"
	"promo-bot/internal/store"
)

// Bot wraps the Telegram API together with the record store, the
// administrator set and the per-chat workflow sessions.
type Bot struct {
	API         *tgbotapi.BotAPI
	Store       *store.Store
	AdminIDs    []int64
	states      map[int64]*models.UserState
	statesMutex sync.RWMutex
}

func New(token string, st *store.Store, adminIDs []int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	zap.L().Info("authorized on telegram", zap.String("username", api.Self.UserName))

	return &Bot{
		API:      api,
		Store:    st,
		AdminIDs: adminIDs,
		states:   make(map[int64]*models.UserState),
	}, nil
}

// IsAdmin reports whether userID is in the configured administrator set.
func (b *Bot) IsAdmin(userID int64) bool {
	for _, id := range b.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Workflow sessions, one per chat. SetState starts or advances a session;
// ClearState is the terminal transition.

func (b *Bot) SetState(chatID int64, state *models.UserState) {
	b.statesMutex.Lock()
	defer b.statesMutex.Unlock()
	b.states[chatID] = state
}

func (b *Bot) GetState(chatID int64) *models.UserState {
	b.statesMutex.RLock()
	defer b.statesMutex.RUnlock()
	return b.states[chatID]
}

func (b *Bot) ClearState(chatID int64) {
	b.statesMutex.Lock()
	defer b.statesMutex.Unlock()
	delete(b.states, chatID)
}

func (b *Bot) SendMessage(chatID int64, text string, replyMarkup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}

	_, err := b.API.Send(msg)
	return err
}

func (b *Bot) SendHTMLMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	_, err := b.API.Send(msg)
	return err
}

func (b *Bot) EditMessage(chatID int64, messageID int, text string, replyMarkup *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ReplyMarkup = replyMarkup

	_, err := b.API.Send(msg)
	return err
}

func (b *Bot) EditReplyMarkup(chatID int64, messageID int, markup tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup)
	_, err := b.API.Send(msg)
	return err
}

func (b *Bot) AnswerCallbackQuery(callbackID string, text string) error {
	callback := tgbotapi.NewCallback(callbackID, text)
	_, err := b.API.Request(callback)
	return err
}

// DownloadPhoto fetches an uploaded photo from Telegram and stores it under
// the photos directory named by its file id.
func (b *Bot) DownloadPhoto(fileID string) (string, error) {
	url, err := b.API.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file %s: %w", fileID, err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file %s: status %s", fileID, resp.Status)
	}

	path := filepath.Join(b.Store.PhotosDir(), fileID+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Keyboard builders

// PromotionListKeyboard renders one button per stored promotion, tagged
// with the given prefix plus the promotion id.
func (b *Bot) PromotionListKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, id := range b.Store.ListIDs() {
		p, ok := b.Store.Get(id)
		if !ok {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(p.Name, prefix+id),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ShopToggleKeyboard renders one toggle button per registered shop with a
// checkmark prefix for selected ones, followed by the done button and,
// optionally, a send-to-all button.
func (b *Bot) ShopToggleKeyboard(selected func(chatID string) bool, togglePrefix, doneTag string, withAll bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range b.Store.Chats() {
		label := c.Name
		if selected(c.ID) {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, togglePrefix+c.ID),
		))
	}
	if withAll {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📢 Отправить во все", "sendshops_all"),
			tgbotapi.NewInlineKeyboardButtonData("✅ Готово", doneTag),
		))
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Готово", doneTag),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DeleteConfirmKeyboard renders the delete confirmation pair.
func (b *Bot) DeleteConfirmKeyboard(promoID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", "confirm_delete_"+promoID),
			tgbotapi.NewInlineKeyboardButtonData("Отмена", "cancel_delete"),
		),
	)
}
