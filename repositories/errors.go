package repositories

import "errors"

// Repository katmanının ortak sentinel hataları. Servis katmanı bunları
// errors.Is ile sınıflandırıp kendi hata türlerine çevirir.
var (
	// ErrNotFound kayıt bulunamadığında döner.
	ErrNotFound = errors.New("kayıt bulunamadı")
	// ErrConflict ID üretim bütçesi tükendiğinde veya unique ihlali
	// çözülemediğinde döner.
	ErrConflict = errors.New("benzersiz anahtar çakışması")
)
