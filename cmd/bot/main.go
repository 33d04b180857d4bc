package main

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"promo-bot/internal/bot"
	"promo-bot/internal/config"
	"promo-bot/internal/dispatch"
	"promo-bot/internal/handlers"
	"promo-bot/internal/scheduler"
	"promo-bot/internal/store"
	"promo-bot/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	zapLogger, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, logger.DefaultServiceName)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()
	zap.ReplaceGlobals(zapLogger)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		zap.L().Fatal("invalid timezone", zap.String("tz", cfg.Timezone), zap.Error(err))
	}

	st, err := store.New(cfg.DataFile, cfg.ChatIDsFile, cfg.PhotosDir)
	if err != nil {
		zap.L().Fatal("failed to open record store", zap.Error(err))
	}

	b, err := bot.New(cfg.BotToken, st, cfg.AdminIDs)
	if err != nil {
		zap.L().Fatal("failed to create bot", zap.Error(err))
	}

	setupCommands(b, cfg.AdminIDs)

	d := dispatch.New(b.API)
	jobs := &scheduler.Jobs{Bot: b, Dispatcher: d}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go scheduler.RunDaily(ctx, cfg.BroadcastAt.Hour, cfg.BroadcastAt.Minute, loc, "broadcast", jobs.MorningRun)
	go scheduler.RunDaily(ctx, cfg.ExpiredCheckAt.Hour, cfg.ExpiredCheckAt.Minute, loc, "expired-check", jobs.NotifyAdminsExpired)

	zap.L().Info("bot started",
		zap.String("broadcast_time", cfg.BroadcastTime),
		zap.String("expired_check_time", cfg.ExpiredCheckTime),
		zap.String("tz", cfg.Timezone))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)

	for update := range updates {
		switch {
		case update.Message != nil:
			if update.Message.IsCommand() {
				handleCommand(b, d, update.Message)
			} else {
				handlers.HandleMessage(b, update.Message)
			}
		case update.CallbackQuery != nil:
			handlers.HandleCallbackQuery(b, d, update.CallbackQuery)
		}
	}
}

func handleCommand(b *bot.Bot, d *dispatch.Dispatcher, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		handlers.HandleStart(b, message)
	case "promotions":
		handlers.HandlePromotions(b, message)
	case "add_promotion":
		handlers.HandleAddPromotion(b, message)
	case "delete_promotion":
		handlers.HandleDeletePromotion(b, message)
	case "edit_promotion":
		handlers.HandleEditPromotion(b, message)
	case "send_promo":
		handlers.HandleSendPromo(b, message)
	case "cancel":
		handlers.HandleCancel(b, message)
	}
}

// setupCommands publishes the public command menu and the extended menu for
// each administrator chat. A per-admin failure is logged and skipped.
func setupCommands(b *bot.Bot, adminIDs []int64) {
	public := []tgbotapi.BotCommand{
		{Command: "start", Description: "Запустить бота"},
		{Command: "promotions", Description: "Посмотреть акции"},
	}
	admin := append(public,
		tgbotapi.BotCommand{Command: "add_promotion", Description: "Добавить акцию"},
		tgbotapi.BotCommand{Command: "delete_promotion", Description: "Удалить акцию"},
		tgbotapi.BotCommand{Command: "edit_promotion", Description: "Редактировать акцию"},
		tgbotapi.BotCommand{Command: "send_promo", Description: "Отправить акцию вручную"},
	)

	if _, err := b.API.Request(tgbotapi.NewSetMyCommandsWithScope(
		tgbotapi.NewBotCommandScopeDefault(), public...)); err != nil {
		zap.L().Error("failed to set public commands", zap.Error(err))
	}

	for _, adminID := range adminIDs {
		if _, err := b.API.Request(tgbotapi.NewSetMyCommandsWithScope(
			tgbotapi.NewBotCommandScopeChat(adminID), admin...)); err != nil {
			zap.L().Error("failed to set admin commands",
				zap.Int64(logger.FieldUserID, adminID), zap.Error(err))
		}
	}
}
