package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"promo-bot/internal/models"
)

// ErrNotFound is returned when a promotion id is not in the store, usually
// because it was deleted while a button referencing it was still on screen.
var ErrNotFound = errors.New("promotion not found")

// Chat is one chat registry entry.
type Chat struct {
	ID   string
	Name string
}

// Store owns the two persisted documents: promotions by id and the chat
// registry (chat id -> shop name). All reads and writes go through the
// in-memory maps under the mutex; the files are rewritten after every
// mutation. Writes are not atomic, which is accepted for a clerical data
// file with low write frequency.
type Store struct {
	mu        sync.RWMutex
	dataFile  string
	chatsFile string
	photosDir string

	promotions map[string]*models.Promotion
	chats      map[string]string
	nextID     int
}

// New creates missing files and the photos directory, then loads both
// documents. A document that cannot be decoded even through the legacy
// code page is treated as empty and logged, not fatal.
func New(dataFile, chatsFile, photosDir string) (*Store, error) {
	s := &Store{
		dataFile:   dataFile,
		chatsFile:  chatsFile,
		photosDir:  photosDir,
		promotions: make(map[string]*models.Promotion),
		chats:      make(map[string]string),
		nextID:     1,
	}

	for _, path := range []string{dataFile, chatsFile} {
		if err := ensureFile(path); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(photosDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photos dir: %w", err)
	}

	s.loadPromotions()
	s.loadChats()
	return s, nil
}

func ensureFile(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create dir for %s: %w", path, err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	zap.L().Info("created empty store file", zap.String("path", path))
	return nil
}

func (s *Store) loadPromotions() {
	var m map[string]*models.Promotion
	if err := readDocument(s.dataFile, &m); err != nil {
		zap.L().Error("failed to load promotions, starting empty",
			zap.String("path", s.dataFile), zap.Error(err))
		m = nil
	}
	if m == nil {
		m = make(map[string]*models.Promotion)
	}
	s.promotions = m

	// Seed the monotonic id counter past every existing numeric id so a
	// delete followed by a create can never reuse an identifier.
	s.nextID = 1
	for id := range s.promotions {
		if n, err := strconv.Atoi(id); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}
}

func (s *Store) loadChats() {
	var m map[string]string
	if err := readDocument(s.chatsFile, &m); err != nil {
		zap.L().Error("failed to load chat registry, starting empty",
			zap.String("path", s.chatsFile), zap.Error(err))
		m = nil
	}
	if m == nil {
		m = make(map[string]string)
	}
	s.chats = m
}

// readDocument reads a JSON document as UTF-8, falling back to Windows-1251
// for files corrupted by earlier re-encodings.
func readDocument(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if utf8.Valid(b) {
		if err := json.Unmarshal(b, v); err == nil {
			return nil
		}
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(b)
	if err != nil {
		return fmt.Errorf("cp1251 decode failed: %w", err)
	}
	if err := json.Unmarshal(decoded, v); err != nil {
		return fmt.Errorf("unmarshal failed after cp1251 fallback: %w", err)
	}
	zap.L().Warn("store file read via cp1251 fallback", zap.String("path", path))
	return nil
}

// Get returns a copy of the promotion with the given id.
func (s *Store) Get(id string) (models.Promotion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.promotions[id]
	if !ok {
		return models.Promotion{}, false
	}
	return copyPromotion(p), true
}

// Snapshot returns a copy of all promotions keyed by id.
func (s *Store) Snapshot() map[string]models.Promotion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.Promotion, len(s.promotions))
	for id, p := range s.promotions {
		out[id] = copyPromotion(p)
	}
	return out
}

// ListIDs returns promotion ids sorted numerically where possible.
func (s *Store) ListIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.promotions))
	for id := range s.promotions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Count returns the number of stored promotions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.promotions)
}

// Create finalizes a draft: assigns the next sequential id, attaches the
// selected shops as the promotion's target set and persists. The returned
// error is the persistence outcome; the in-memory record is committed
// either way.
func (s *Store) Create(draft *models.PromotionDraft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shops := make([]string, 0, len(draft.Selected))
	for id := range draft.Selected {
		shops = append(shops, id)
	}
	sort.Strings(shops)

	id := strconv.Itoa(s.nextID)
	s.nextID++
	s.promotions[id] = &models.Promotion{
		Name:        draft.Name,
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
		Description: draft.Description,
		Photo:       draft.Photo,
		Link:        draft.Link,
		Shops:       shops,
	}
	return id, s.savePromotionsLocked()
}

// Delete removes the promotion record and releases its photo file. A photo
// removal failure is logged and ignored.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promotions[id]
	if !ok {
		return ErrNotFound
	}
	if p.Photo != "" {
		if err := os.Remove(p.Photo); err != nil && !errors.Is(err, os.ErrNotExist) {
			zap.L().Warn("failed to remove promotion photo",
				zap.String("path", p.Photo), zap.Error(err))
		}
	}
	delete(s.promotions, id)
	return s.savePromotionsLocked()
}

// ToggleShop flips chatID membership on the live promotion record and
// returns a copy of the updated record. It does not persist; the editing
// workflow saves once on completion.
func (s *Store) ToggleShop(id, chatID string) (models.Promotion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.promotions[id]
	if !ok {
		return models.Promotion{}, false
	}
	p.ToggleShop(chatID)
	return copyPromotion(p), true
}

// SavePromotions persists the promotions document.
func (s *Store) SavePromotions() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePromotionsLocked()
}

func (s *Store) savePromotionsLocked() error {
	b, err := json.MarshalIndent(s.promotions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal promotions: %w", err)
	}
	if err := os.WriteFile(s.dataFile, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.dataFile, err)
	}
	return nil
}

// RegisterChat stores a chat id -> shop name mapping and persists.
func (s *Store) RegisterChat(chatID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats[chatID] = name
	b, err := json.MarshalIndent(s.chats, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal chat registry: %w", err)
	}
	if err := os.WriteFile(s.chatsFile, b, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.chatsFile, err)
	}
	return nil
}

// ShopName returns the registered display name for a chat.
func (s *Store) ShopName(chatID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.chats[chatID]
	return name, ok
}

// Chats returns all registry entries sorted by shop name for stable
// keyboard layouts.
func (s *Store) Chats() []Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chat, 0, len(s.chats))
	for id, name := range s.chats {
		out = append(out, Chat{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PhotosDir returns the directory holding uploaded promotion images.
func (s *Store) PhotosDir() string {
	return s.photosDir
}

func copyPromotion(p *models.Promotion) models.Promotion {
	out := *p
	out.Shops = append([]string(nil), p.Shops...)
	return out
}
