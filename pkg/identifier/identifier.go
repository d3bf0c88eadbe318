package identifier

import (
	"fmt"
	"math/rand"
)

// Kind ID üretilecek varlık türünü belirler.
type Kind string

const (
	KindUser     Kind = "US"
	KindForm     Kind = "FO"
	KindQuestion Kind = "QU"
	KindAnswer   Kind = "AN"
)

// New "<önek><4 haneli sayı>" biçiminde kısa bir ID üretir (örn. "FO1234").
// Sayı [1000, 9999] aralığından uniform çekilir; benzersizlik GARANTİ EDİLMEZ.
// Çağıran taraf (repository katmanı) gorm.ErrDuplicatedKey'i üretim çakışması
// olarak değerlendirip sınırlı sayıda yeniden denemelidir.
func New(kind Kind) string {
	return fmt.Sprintf("%s%d", kind, 1000+rand.Intn(9000))
}
