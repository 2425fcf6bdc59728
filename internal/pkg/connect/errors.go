package connect

import "errors"

var (
	// ErrUnknownPlatform is returned for platforms without a provider entry.
	ErrUnknownPlatform = errors.New("no oauth provider for platform")

	// ErrInvalidState is returned when the callback state is malformed,
	// expired, already redeemed or simply unknown. Each state is redeemable
	// exactly once.
	ErrInvalidState = errors.New("invalid or expired oauth state")

	// ErrUnauthenticated is returned when the redeeming caller does not
	// match the operator that started the flow.
	ErrUnauthenticated = errors.New("oauth state belongs to another user")

	// ErrTokenExchangeFailed is returned when the platform rejects the
	// code (or refresh token) exchange.
	ErrTokenExchangeFailed = errors.New("token exchange failed")

	// ErrProfileFetchFailed is returned when the profile lookup after a
	// successful exchange fails.
	ErrProfileFetchFailed = errors.New("profile fetch failed")

	// ErrReauthorizationRequired is returned when a credential can no
	// longer be refreshed. The operator has to run the connect flow again;
	// retrying automatically cannot help.
	ErrReauthorizationRequired = errors.New("reauthorization required")

	// ErrNoConnection is returned when no connection exists for the
	// requested account and platform.
	ErrNoConnection = errors.New("no connection for account and platform")
)
