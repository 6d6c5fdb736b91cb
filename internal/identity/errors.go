package identity

import "errors"

var (
	ErrNotFound           = errors.New("identity: user not found")
	ErrEmailTaken         = errors.New("identity: email already registered")
	ErrUsernameTaken      = errors.New("identity: username already taken")
	ErrInvalidCredentials = errors.New("identity: incorrect username or password")
	ErrAccountInactive    = errors.New("identity: inactive user account")
	ErrWrongPassword      = errors.New("identity: incorrect current password")
	ErrSelfDeactivation   = errors.New("identity: cannot deactivate your own account")
	ErrInvalidInput       = errors.New("identity: invalid input")
	ErrWeakPassword       = errors.New("identity: password does not meet the strength policy")
)
