package dto

// RegisterRequest POST /api/auth/register gövdesi.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest POST /api/auth/login gövdesi.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// VerifyOtpRequest POST /api/auth/verify-otp gövdesi.
type VerifyOtpRequest struct {
	UserID string `json:"userId" validate:"required"`
	Otp    string `json:"otp" validate:"required,len=6"`
}

// ResendOtpRequest POST /api/auth/resend-otp gövdesi.
type ResendOtpRequest struct {
	UserID string `json:"userId" validate:"required"`
}
