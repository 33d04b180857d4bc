// Package events decodes inline-button callback payloads into a closed
// event type once at the boundary, so workflow code matches on variants
// instead of re-parsing string prefixes.
package events

import "strings"

// Kind identifies the button that was pressed.
type Kind int

const (
	KindUnknown Kind = iota

	KindViewPromo     // promo_<id>
	KindDeleteSelect  // delete_<id>
	KindDeleteConfirm // confirm_delete_<id>
	KindDeleteCancel  // cancel_delete

	KindShopToggle // shop_<chatid>   (creation selection)
	KindShopsDone  // shops_done

	KindSendPromoSelect // sendpromo_<id>
	KindSendShopToggle  // sendshop_<chatid>
	KindSendAll         // sendshops_all
	KindSendDone        // sendshops_done

	KindEditSelect     // edit_<id>
	KindEditShopToggle // edit_shop_<chatid>
	KindEditDone       // edit_shops_done
)

// Event is a decoded callback payload. ID carries the promotion id or chat
// id embedded in the tag, empty for tags without one.
type Event struct {
	Kind Kind
	ID   string
}

// Decode maps a raw callback payload onto an Event. Payloads outside the
// known tag set decode to KindUnknown.
func Decode(data string) Event {
	switch data {
	case "cancel_delete":
		return Event{Kind: KindDeleteCancel}
	case "shops_done":
		return Event{Kind: KindShopsDone}
	case "sendshops_all":
		return Event{Kind: KindSendAll}
	case "sendshops_done":
		return Event{Kind: KindSendDone}
	case "edit_shops_done":
		return Event{Kind: KindEditDone}
	}

	// Longer prefixes first: edit_shop_ and confirm_delete_ would otherwise
	// match edit_ and nothing, respectively.
	prefixes := []struct {
		prefix string
		kind   Kind
	}{
		{"confirm_delete_", KindDeleteConfirm},
		{"edit_shop_", KindEditShopToggle},
		{"edit_", KindEditSelect},
		{"sendpromo_", KindSendPromoSelect},
		{"sendshop_", KindSendShopToggle},
		{"promo_", KindViewPromo},
		{"delete_", KindDeleteSelect},
		{"shop_", KindShopToggle},
	}
	for _, p := range prefixes {
		if strings.HasPrefix(data, p.prefix) {
			return Event{Kind: p.kind, ID: strings.TrimPrefix(data, p.prefix)}
		}
	}
	return Event{Kind: KindUnknown}
}
