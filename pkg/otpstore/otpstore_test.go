package otpstore

import (
	"testing"
	"time"
)

func TestVerify_ConsumesEntry(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Put("US1234", "123456")

	if !s.Verify("US1234", "123456") {
		t.Fatalf("geçerli OTP doğrulanamadı")
	}
	// Tek kullanımlık: ikinci deneme başarısız olmalı.
	if s.Verify("US1234", "123456") {
		t.Fatalf("tüketilmiş OTP tekrar doğrulandı")
	}
}

func TestVerify_WrongCode(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Put("US1234", "123456")

	if s.Verify("US1234", "999999") {
		t.Fatalf("yanlış OTP doğrulandı")
	}
	// Yanlış deneme kaydı tüketmez.
	if !s.Verify("US1234", "123456") {
		t.Fatalf("doğru OTP yanlış denemeden sonra doğrulanamadı")
	}
}

func TestVerify_Expired(t *testing.T) {
	s := New(10 * time.Millisecond)
	defer s.Close()

	s.Put("US1234", "123456")
	time.Sleep(30 * time.Millisecond)

	if s.Verify("US1234", "123456") {
		t.Fatalf("süresi dolmuş OTP doğrulandı")
	}
}

func TestPut_Overwrites(t *testing.T) {
	s := New(time.Minute)
	defer s.Close()

	s.Put("US1234", "111111")
	s.Put("US1234", "222222")

	if s.Verify("US1234", "111111") {
		t.Fatalf("üzerine yazılmış eski OTP doğrulandı")
	}
	if !s.Verify("US1234", "222222") {
		t.Fatalf("güncel OTP doğrulanamadı")
	}
}
