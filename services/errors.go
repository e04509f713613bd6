package services

import "errors"

// Shared errors mapped to HTTP statuses in the handler layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed  = errors.New("validation failed")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidStayRange  = errors.New("stay end date must be after start date")
	ErrStayConflict      = errors.New("stay overlaps an existing booking")
	ErrStayNotCancelable = errors.New("only booked stays can be cancelled")
	ErrExpenseInvalid    = errors.New("expense amount must be positive")
	ErrSplitMismatch     = errors.New("expense shares do not add up to the amount")
	ErrMediaTooLarge     = errors.New("media file exceeds the size limit")
	ErrMediaUnsupported  = errors.New("unsupported media content type")

	ErrInvitePendingExists = errors.New("a pending invitation already exists for this email")

	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrNotHouseMember     = errors.New("user is not a member of this house")
	ErrAdminOnly          = errors.New("only a house admin can perform this action")

	ErrUserNotFound       = errors.New("user not found")
	ErrHouseNotFound      = errors.New("house not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrStayNotFound       = errors.New("stay not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrMediaNotFound      = errors.New("media item not found")

	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrAuthCodeInvalid        = errors.New("invalid or expired authorization code")
	ErrAuthTokenInvalid       = errors.New("invalid or expired verification token")
)
