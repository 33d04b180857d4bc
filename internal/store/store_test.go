package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"promo-bot/internal/models"
)

type fixture struct {
	dataFile  string
	chatsFile string
	photosDir string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	return fixture{
		dataFile:  filepath.Join(dir, "data.json"),
		chatsFile: filepath.Join(dir, "chat_ids.json"),
		photosDir: filepath.Join(dir, "photos"),
	}
}

func (f fixture) open(t *testing.T) *Store {
	t.Helper()
	s, err := New(f.dataFile, f.chatsFile, f.photosDir)
	require.NoError(t, err)
	return s
}

func draft(name string, shops ...string) *models.PromotionDraft {
	selected := make(map[string]struct{}, len(shops))
	for _, id := range shops {
		selected[id] = struct{}{}
	}
	return &models.PromotionDraft{
		Name:        name,
		StartDate:   "2025-06-03",
		EndDate:     "2025-07-31",
		Description: "описание",
		Link:        "https://example.com",
		Selected:    selected,
	}
}

func TestNewCreatesMissingFiles(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	assert.Equal(t, 0, s.Count())
	assert.FileExists(t, f.dataFile)
	assert.FileExists(t, f.chatsFile)
	assert.DirExists(t, f.photosDir)
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	id1, err := s.Create(draft("first", "111"))
	require.NoError(t, err)
	id2, err := s.Create(draft("second", "111"))
	require.NoError(t, err)

	assert.Equal(t, "1", id1)
	assert.Equal(t, "2", id2)
}

func TestPromotionRoundTrip(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	id, err := s.Create(draft("Sale", "111", "222"))
	require.NoError(t, err)

	reopened := f.open(t)
	assert.Equal(t, s.Snapshot(), reopened.Snapshot())

	p, ok := reopened.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Sale", p.Name)
	assert.Equal(t, []string{"111", "222"}, p.Shops)
}

func TestChatRegistryRoundTrip(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	require.NoError(t, s.RegisterChat("111", "Магазин на Ленина"))
	require.NoError(t, s.RegisterChat("222", "Магазин в центре"))

	reopened := f.open(t)
	name, ok := reopened.ShopName("111")
	require.True(t, ok)
	assert.Equal(t, "Магазин на Ленина", name)

	chats := reopened.Chats()
	require.Len(t, chats, 2)
	// Sorted by shop name.
	assert.Equal(t, "222", chats[0].ID)
	assert.Equal(t, "111", chats[1].ID)
}

func TestToggleShopIsIdempotentPair(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	id, err := s.Create(draft("Sale", "111"))
	require.NoError(t, err)

	p, ok := s.ToggleShop(id, "222")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"111", "222"}, p.Shops)

	p, ok = s.ToggleShop(id, "222")
	require.True(t, ok)
	assert.Equal(t, []string{"111"}, p.Shops)

	// Toggling an existing member off and on again must not duplicate it.
	s.ToggleShop(id, "111")
	p, _ = s.ToggleShop(id, "111")
	assert.Equal(t, []string{"111"}, p.Shops)
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	_, err := s.Create(draft("first", "111"))
	require.NoError(t, err)
	id2, err := s.Create(draft("second", "111"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(id2))

	id3, err := s.Create(draft("third", "111"))
	require.NoError(t, err)
	assert.Equal(t, "3", id3)
}

func TestDeleteReleasesPhoto(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	photo := filepath.Join(t.TempDir(), "abc123.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o644))

	d := draft("Sale", "111")
	d.Photo = photo
	id, err := s.Create(d)
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))

	_, ok := s.Get(id)
	assert.False(t, ok)
	assert.NoFileExists(t, photo)
}

func TestDeleteMissingPromotion(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	assert.ErrorIs(t, s.Delete("42"), ErrNotFound)
}

func TestLegacyEncodingFallback(t *testing.T) {
	f := newFixture(t)

	utf8JSON, err := json.Marshal(map[string]string{"111": "Магазин у дома"})
	require.NoError(t, err)
	legacy, err := charmap.Windows1251.NewEncoder().Bytes(utf8JSON)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.chatsFile, legacy, 0o644))

	s := f.open(t)
	name, ok := s.ShopName("111")
	require.True(t, ok)
	assert.Equal(t, "Магазин у дома", name)
}

func TestCorruptDocumentStartsEmpty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.dataFile, []byte("{definitely not json"), 0o644))

	s := f.open(t)
	assert.Equal(t, 0, s.Count())
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)

	id, err := s.Create(draft("Sale", "111"))
	require.NoError(t, err)

	snap := s.Snapshot()
	p := snap[id]
	p.Shops = append(p.Shops, "999")
	snap[id] = p

	fresh, _ := s.Get(id)
	assert.Equal(t, []string{"111"}, fresh.Shops)
}
