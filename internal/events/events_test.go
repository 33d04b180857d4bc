package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		data string
		want Event
	}{
		{"promo_4", Event{Kind: KindViewPromo, ID: "4"}},
		{"delete_12", Event{Kind: KindDeleteSelect, ID: "12"}},
		{"confirm_delete_12", Event{Kind: KindDeleteConfirm, ID: "12"}},
		{"cancel_delete", Event{Kind: KindDeleteCancel}},

		{"shop_123456", Event{Kind: KindShopToggle, ID: "123456"}},
		{"shops_done", Event{Kind: KindShopsDone}},

		{"sendpromo_7", Event{Kind: KindSendPromoSelect, ID: "7"}},
		{"sendshop_-100987", Event{Kind: KindSendShopToggle, ID: "-100987"}},
		{"sendshops_all", Event{Kind: KindSendAll}},
		{"sendshops_done", Event{Kind: KindSendDone}},

		{"edit_3", Event{Kind: KindEditSelect, ID: "3"}},
		{"edit_shop_123456", Event{Kind: KindEditShopToggle, ID: "123456"}},
		{"edit_shops_done", Event{Kind: KindEditDone}},

		{"", Event{Kind: KindUnknown}},
		{"noop", Event{Kind: KindUnknown}},
		{"promo", Event{Kind: KindUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.data))
		})
	}
}
