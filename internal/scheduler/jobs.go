package scheduler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"promo-bot/internal/bot"
	"promo-bot/internal/dispatch"
	"promo-bot/internal/promo"
	"promo-bot/pkg/logger"
)

// ExpiringNoticeDays is how many days before the end date the expiring-soon
// warning goes out.
const ExpiringNoticeDays = 3

// Jobs holds the daily dispatch entry points.
type Jobs struct {
	Bot        *bot.Bot
	Dispatcher *dispatch.Dispatcher
}

// MorningRun is the daily broadcast firing: remind every target shop about
// its active promotions, then warn about promotions expiring soon.
func (j *Jobs) MorningRun(now time.Time) {
	j.NotifyActivePromotions(now)
	j.NotifyExpiringPromotions(now)
}

// NotifyActivePromotions sends the daily reminder for every currently
// active promotion to each of its target shops.
func (j *Jobs) NotifyActivePromotions(now time.Time) {
	zap.L().Info("broadcasting active promotions", zap.Time("now", now))

	snapshot := j.Bot.Store.Snapshot()
	count := 0
	for id, p := range snapshot {
		if !promo.IsActive(&p, now) {
			continue
		}
		count++
		zap.L().Info("sending promotion reminder",
			zap.String(logger.FieldPromoID, id),
			zap.String("name", p.Name),
			zap.Strings("shops", p.Shops))
		j.Dispatcher.SendPromotion(&p, p.Shops, dispatch.CaptionReminder)
	}
	zap.L().Info("active promotions broadcast finished", zap.Int("count", count))
}

// NotifyExpiringPromotions warns the target shops of promotions ending in
// exactly ExpiringNoticeDays days.
func (j *Jobs) NotifyExpiringPromotions(now time.Time) {
	expiring := promo.ExpiringIn(j.Bot.Store.Snapshot(), now, ExpiringNoticeDays)
	for id, p := range expiring {
		zap.L().Info("promotion expiring soon",
			zap.String(logger.FieldPromoID, id),
			zap.String("name", p.Name))
		j.Dispatcher.SendPromotion(&p, p.Shops, dispatch.CaptionExpiring)
	}
}

// NotifyAdminsExpired tells every administrator about promotions whose end
// date is today.
func (j *Jobs) NotifyAdminsExpired(now time.Time) {
	expired := promo.ExpiredOn(j.Bot.Store.Snapshot(), now)
	for id, p := range expired {
		zap.L().Info("promotion expired today",
			zap.String(logger.FieldPromoID, id),
			zap.String("name", p.Name))

		text := fmt.Sprintf("❌ Акция '%s' завершилась.\n📅 Дата окончания: %s", p.Name, p.EndDate)
		for _, adminID := range j.Bot.AdminIDs {
			if err := j.Bot.SendMessage(adminID, text, nil); err != nil {
				zap.L().Error("failed to notify admin about expired promotion",
					zap.Int64(logger.FieldUserID, adminID),
					zap.String(logger.FieldPromoID, id),
					zap.Error(err))
			}
		}
	}
}
