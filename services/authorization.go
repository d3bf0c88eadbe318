package services

import "anket.link/models"

// Actor istek adına işlem yapan kimliktir. JWT middleware'i tarafından
// doldurulur (bkz. middlewares.AuthMiddleware).
type Actor struct {
	ID    string
	Admin bool
}

// authorizeFormOwner formun sahibiyle aktörü karşılaştırır. Admin bypass'ı
// örtük DEĞİLDİR: yalnızca çağıranın açıkça allowAdminOverride verdiği yolda
// (silme) tanınır. Yetkisizlik ve yokluk çağırana aynı hatayla döner ki
// formun varlığı sızdırılmasın.
func authorizeFormOwner(form *models.Form, actor Actor, allowAdminOverride bool) error {
	if form == nil {
		return ErrFormNotFound
	}
	if form.UserID == actor.ID {
		return nil
	}
	if allowAdminOverride && actor.Admin {
		return nil
	}
	return ErrFormNotFound
}
