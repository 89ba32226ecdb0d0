package services

import "errors"

// Shared errors used across services and the HTTP mapping.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Auth
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")

	// Players
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerNameTaken    = errors.New("player name is already in use")
	ErrPlayerNameRequired = errors.New("player name is required")
	ErrPlayerHasHistory   = errors.New("player appears in round history and cannot be deleted")

	// Rounds
	ErrRoundNotFound     = errors.New("round not found")
	ErrRoundDateTaken    = errors.New("a round already exists for this date")
	ErrRoundClosed       = errors.New("round is closed for changes")
	ErrTeamNotFound      = errors.New("team not found in round")
	ErrTeamNameRequired  = errors.New("team name is required")
	ErrNegativeResult    = errors.New("result values cannot be negative")
	ErrUnknownRoundEntry = errors.New("entry not found in round")

	// Cash
	ErrCashEntryNotFound  = errors.New("cash entry not found")
	ErrInvalidMonth       = errors.New("month must be between 1 and 12")
	ErrInvalidCashAmount  = errors.New("cash amount must be positive")
	ErrSeasonRequired     = errors.New("season is required")
	ErrUnknownCashFlow    = errors.New("cash category must be manual_in or manual_out")

	// Import / export
	ErrEmptySheet        = errors.New("spreadsheet has no data rows")
	ErrMissingColumns    = errors.New("spreadsheet is missing required columns")
	ErrSharingDisabled   = errors.New("report sharing is not configured")
	ErrNothingToExport   = errors.New("no standings to export for the period")
)
