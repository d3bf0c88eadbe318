package mailer

import (
	"fmt"
	"net/smtp"

	"anket.link/configs/configsapp"
	"anket.link/configs/configslog"

	"go.uber.org/zap"
)

// IMailer e-posta gönderimi için arayüz. Testlerde sahte implementasyon kullanılır.
type IMailer interface {
	SendOtpEmail(to, otp string) error
}

// SMTPMailer net/smtp ile düz metin e-posta gönderir.
type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSMTPMailer konfigürasyondan bir SMTPMailer oluşturur.
func NewSMTPMailer(cfg *configsapp.Config) *SMTPMailer {
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPFrom,
	}
}

// SendOtpEmail doğrulama kodunu alıcıya gönderir.
func (m *SMTPMailer) SendOtpEmail(to, otp string) error {
	if m.host == "" {
		// SMTP yapılandırılmamışsa kayıt akışını kırma, sadece logla.
		configslog.SLog.Warnf("SMTP yapılandırılmamış, OTP e-postası gönderilmedi: %s", to)
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Dogrulama Kodunuz\r\n\r\nDogrulama kodunuz: %s\r\n",
		m.from, to, otp,
	))

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg); err != nil {
		configslog.Log.Error("OTP e-postası gönderilemedi", zap.String("to", to), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("OTP e-postası gönderildi: %s", to)
	return nil
}

var _ IMailer = (*SMTPMailer)(nil)
