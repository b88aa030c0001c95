package apperr

import "errors"

// Kind classifies a domain error so the HTTP layer can pick a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindInvalid
	KindConflict
	KindRateLimited
	KindUnauthorized
)

// Error is a domain error whose message is shown to the end user as-is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// New creates a domain error with a caller-supplied message.
func New(kind Kind, msg string) error {
	return newError(kind, msg)
}

var (
	ErrRestaurantNotFound       = newError(KindNotFound, "Restoran bulunamadı")
	ErrNotificationNotFound     = newError(KindNotFound, "Bildirim bulunamadı")
	ErrNotificationTypeNotFound = newError(KindNotFound, "Bildirim türü bulunamadı")
	ErrUserNotFound             = newError(KindNotFound, "Kullanıcı bulunamadı")

	ErrNotOwnerRename       = newError(KindForbidden, "Sadece restoran sahibi adı değiştirebilir")
	ErrNotOwnerInviteCode   = newError(KindForbidden, "Sadece restoran sahibi davet kodunu yenileyebilir")
	ErrNotOwnerCreateType   = newError(KindForbidden, "Sadece restoran sahibi bildirim türü ekleyebilir")
	ErrNotOwnerDeleteType   = newError(KindForbidden, "Sadece restoran sahibi bildirim türü silebilir")
	ErrAlreadyMember        = newError(KindConflict, "Bu restorana zaten üyesiniz")
	ErrEmailTaken           = newError(KindConflict, "Bu email zaten kullanılıyor")
	ErrInvalidCredentials   = newError(KindUnauthorized, "Email veya şifre hatalı")
	ErrInvalidEmail         = newError(KindInvalid, "Geçersiz email adresi")
	ErrPasswordRequired     = newError(KindInvalid, "Şifre gereklidir")
	ErrNameTooShort         = newError(KindInvalid, "İsim en az 2 karakter olmalıdır")
	ErrPasswordTooShort     = newError(KindInvalid, "Şifre en az 8 karakter olmalıdır")
	ErrPasswordNoUpper      = newError(KindInvalid, "Şifre en az bir büyük harf içermelidir")
	ErrPasswordNoLower      = newError(KindInvalid, "Şifre en az bir küçük harf içermelidir")
	ErrPasswordNoDigit      = newError(KindInvalid, "Şifre en az bir rakam içermelidir")
	ErrInvalidRole          = newError(KindInvalid, "Geçersiz rol")
	ErrInvalidTarget        = newError(KindInvalid, "Bildirim için tek bir alıcı ya da rol seçilmelidir")
	ErrInvalidPriority      = newError(KindInvalid, "Geçersiz öncelik")
	ErrInvalidCategory      = newError(KindInvalid, "Geçersiz kategori")
	ErrTitleRequired        = newError(KindInvalid, "Başlık gereklidir")
	ErrRestaurantNameNeeded = newError(KindInvalid, "Restoran adı gereklidir")
)

// KindOf returns the kind of err, or KindInternal when err is not a domain error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
