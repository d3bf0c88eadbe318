package otpstore

import (
	"sync"
	"time"
)

// Store süreç içi, TTL'li OTP deposudur. Kayıtlar yeniden başlatmada
// kaybolur; bu kabul edilen bir davranıştır (OTP zaten kısa ömürlü).
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	done    chan struct{}
}

type entry struct {
	code      string
	expiresAt time.Time
}

// New verilen TTL ile bir Store oluşturur ve süresi dolan kayıtları
// temizleyen arka plan görevini başlatır.
func New(ttl time.Duration) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Put verilen anahtar için OTP kaydeder; önceki kaydın üzerine yazar.
func (s *Store) Put(key, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{code: code, expiresAt: time.Now().Add(s.ttl)}
}

// Verify kodu doğrular. Başarılı doğrulama kaydı tüketir (tek kullanımlık).
// Süresi dolmuş kayıt da silinir ve false döner.
func (s *Store) Verify(key, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return false
	}
	if e.code != code {
		return false
	}
	delete(s.entries, key)
	return true
}

// Close arka plan temizleyicisini durdurur.
func (s *Store) Close() {
	close(s.done)
}

func (s *Store) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for k, e := range s.entries {
				if now.After(e.expiresAt) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}
