package models

// Promotion is a single promotion record as persisted in the data file.
// Dates are ISO calendar dates (YYYY-MM-DD). Shops holds the chat IDs of
// the stores the promotion targets; membership follows set semantics even
// though it is stored as a list.
type Promotion struct {
	Name        string   `json:"name"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Description string   `json:"description"`
	Photo       string   `json:"photo"`
	Link        string   `json:"link"`
	Shops       []string `json:"shops"`
}

// HasShop reports whether chatID is in the promotion's target set.
func (p *Promotion) HasShop(chatID string) bool {
	for _, id := range p.Shops {
		if id == chatID {
			return true
		}
	}
	return false
}

// ToggleShop adds chatID to the target set if absent, removes it if present.
// Repeated toggles never accumulate duplicates.
func (p *Promotion) ToggleShop(chatID string) {
	for i, id := range p.Shops {
		if id == chatID {
			p.Shops = append(p.Shops[:i], p.Shops[i+1:]...)
			return
		}
	}
	p.Shops = append(p.Shops, chatID)
}

// PromotionDraft is the in-progress record built by the creation workflow.
// Selected is the pending shop selection until the draft is finalized.
type PromotionDraft struct {
	Name        string
	StartDate   string
	EndDate     string
	Description string
	Photo       string
	Link        string
	Selected    map[string]struct{}
}

// Workflow state names. One interactive session per chat; the session is
// discarded on completion or cancellation.
const (
	StateAwaitStoreName = "await_store_name"

	StatePromoName  = "promo_name"
	StatePromoDates = "promo_dates"
	StatePromoDesc  = "promo_desc"
	StatePromoPhoto = "promo_photo"
	StatePromoLink  = "promo_link"
	StatePromoShops = "promo_shops"

	StateEditShops = "edit_shops"

	StateSendSelectPromo = "send_select_promo"
	StateSendSelectShops = "send_select_shops"
)

// UserState is the transient scratch record for one workflow instance.
// It is owned by the bot's session map and destroyed on terminal transitions;
// a restart loses in-flight steps, which is acceptable for these short
// interactive sessions.
type UserState struct {
	State    string
	Draft    *PromotionDraft
	PromoID  string
	Selected map[string]struct{}
}
