package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/openmarks/gradebook/core/auth"
	"github.com/openmarks/gradebook/core/credentials"
	"github.com/openmarks/gradebook/core/csrf"
	"github.com/openmarks/gradebook/core/session"
)

// authRequest is the POST body of the auth endpoint. Command selects the
// operation; the other fields apply per command.
type authRequest struct {
	Command     string `json:"command"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Persistent  bool   `json:"persistent"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Auth is the /api/login endpoint: GET reports login state, POST executes
// the login, logout and change_password commands. All POST commands are
// gated by the literal CSRF header value, since login and logout precede
// having a session secret; change_password additionally proves possession of
// the old password.
func (a *API) Auth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPost:
	default:
		methodNotAllowed(w, "GET, HEAD, POST")
		return
	}

	var (
		updates []session.CookieUpdate
		status  int
		body    loginResponse
	)

	err := a.tx.WithinTx(r.Context(), func(ctx context.Context) error {
		identity, ups, err := a.resolver.Resolve(ctx, a.codec.Read(r))
		updates = ups
		loggedIn := err == nil
		if err != nil && !errors.Is(err, session.ErrNotLoggedIn) {
			return err
		}

		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			status, body = a.loginState(loggedIn, identity)
			return nil
		}

		if err := csrf.CheckLogin(r); err != nil {
			status, body = http.StatusBadRequest, loginResponse{Status: "Cors custom header needed", LoggedIn: loggedIn}
			return nil
		}

		req, ok := decodeAuthRequest(r)
		if !ok {
			status, body = http.StatusBadRequest, loginResponse{Status: "Only json bodies can be sent", LoggedIn: loggedIn}
			return nil
		}

		switch req.Command {
		case "login":
			return a.handleLogin(ctx, r, req, loggedIn, &updates, &status, &body)
		case "logout":
			ups, err := a.auth.Logout(ctx, a.codec.Read(r))
			if err != nil {
				return err
			}
			updates = ups
			status, body = http.StatusOK, loginResponse{Status: "Logged Out"}
			return nil
		case "change_password":
			return a.handleChangePassword(ctx, req, loggedIn, identity, &updates, &status, &body)
		default:
			status, body = http.StatusBadRequest, loginResponse{Status: "Unknown or missing command", LoggedIn: loggedIn}
			return nil
		}
	})
	if err != nil {
		a.internalError(w, r, err)
		return
	}

	a.codec.Write(w, updates)
	writeJSON(w, status, body)
}

func (a *API) loginState(loggedIn bool, identity session.Identity) (int, loginResponse) {
	if !loggedIn {
		return http.StatusOK, loginResponse{Status: "Logged Out"}
	}
	return http.StatusOK, loginResponse{
		Status:   "Logged In",
		LoggedIn: true,
		CSRF:     identity.CSRFSecret.String(),
	}
}

func (a *API) handleLogin(ctx context.Context, r *http.Request, req authRequest, loggedIn bool, updates *[]session.CookieUpdate, status *int, body *loginResponse) error {
	if req.Username == "" {
		*status, *body = http.StatusBadRequest, loginResponse{Status: "Username invalid", LoggedIn: loggedIn}
		return nil
	}
	if req.Password == "" {
		*status, *body = http.StatusBadRequest, loginResponse{Status: "Password invalid", LoggedIn: loggedIn}
		return nil
	}

	// A login over a live session retires the old chain first.
	if loggedIn {
		ups, err := a.auth.Logout(ctx, a.codec.Read(r))
		if err != nil {
			return err
		}
		*updates = ups
	}

	sess, ups, err := a.auth.Login(ctx, req.Username, req.Password, req.Persistent)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		*status, *body = http.StatusForbidden, loginResponse{Status: "Login error: Invalid username/password?"}
		return nil
	}
	if err != nil {
		return err
	}

	*updates = ups
	*status, *body = http.StatusOK, loginResponse{
		Status:   "Logged in",
		LoggedIn: true,
		CSRF:     sess.CSRFSecret.String(),
	}
	return nil
}

func (a *API) handleChangePassword(ctx context.Context, req authRequest, loggedIn bool, identity session.Identity, updates *[]session.CookieUpdate, status *int, body *loginResponse) error {
	if !loggedIn {
		*status, *body = http.StatusForbidden, loginResponse{Status: "Not Logged In"}
		return nil
	}
	if req.OldPassword == "" {
		*status, *body = http.StatusBadRequest, loginResponse{Status: "Invalid old password", LoggedIn: true}
		return nil
	}
	if req.NewPassword == "" {
		*status, *body = http.StatusBadRequest, loginResponse{Status: "Invalid new password", LoggedIn: true}
		return nil
	}

	sess, ups, err := a.auth.ChangePassword(ctx, identity.UserUUID, req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, credentials.ErrPasswordUnchanged):
		*status, *body = http.StatusBadRequest, loginResponse{Status: "Old password cannot be the same as new password", LoggedIn: true}
		return nil
	case errors.Is(err, credentials.ErrPasswordTooShort):
		*status, *body = http.StatusBadRequest, loginResponse{Status: "New password too small", LoggedIn: true}
		return nil
	case errors.Is(err, credentials.ErrPasswordTooLong):
		*status, *body = http.StatusBadRequest, loginResponse{Status: "New password too big", LoggedIn: true}
		return nil
	case errors.Is(err, auth.ErrInvalidCredentials):
		*status, *body = http.StatusForbidden, loginResponse{Status: "Old password does not match current password"}
		return nil
	case err != nil:
		return err
	}

	*updates = ups
	*status, *body = http.StatusOK, loginResponse{
		Status:   "Password change successful",
		LoggedIn: true,
		CSRF:     sess.CSRFSecret.String(),
	}
	return nil
}

func decodeAuthRequest(r *http.Request) (authRequest, bool) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return authRequest{}, false
	}
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return authRequest{}, false
	}
	return req, true
}
