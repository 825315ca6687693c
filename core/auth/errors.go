package auth

import "errors"

// ErrInvalidCredentials is returned on login failure. Unknown users and
// wrong passwords share this error so responses cannot be used to enumerate
// login names.
var ErrInvalidCredentials = errors.New("invalid username/password")
