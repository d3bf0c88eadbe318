package identifier

import (
	"strconv"
	"strings"
	"testing"
)

func TestNew_Format(t *testing.T) {
	kinds := map[Kind]string{
		KindUser:     "US",
		KindForm:     "FO",
		KindQuestion: "QU",
		KindAnswer:   "AN",
	}

	for kind, prefix := range kinds {
		for i := 0; i < 500; i++ {
			id := New(kind)
			if len(id) != 6 {
				t.Fatalf("beklenen uzunluk 6, gelen %q (%d)", id, len(id))
			}
			if !strings.HasPrefix(id, prefix) {
				t.Fatalf("beklenen önek %q, gelen %q", prefix, id)
			}
			n, err := strconv.Atoi(id[2:])
			if err != nil {
				t.Fatalf("sayısal kısım parse edilemedi: %q", id)
			}
			if n < 1000 || n > 9999 {
				t.Fatalf("sayısal kısım aralık dışında: %d", n)
			}
		}
	}
}

func TestNew_ProducesDifferentValues(t *testing.T) {
	// 9000 olası değer var; 200 çekilişin tamamının aynı olması
	// pratikte imkansız. Çakışmalar normaldir, tekdüzelik değil.
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[New(KindForm)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("üretilen ID'ler hiç çeşitlenmedi: %d benzersiz", len(seen))
	}
}
