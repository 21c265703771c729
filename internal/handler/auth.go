package handler

import (
	"net/http"

	"github.com/authline/authline/internal/api"
	mw "github.com/authline/authline/internal/middleware"
	"github.com/authline/authline/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) accessCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    value,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var body api.SignUpRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.auth.SignUp(body.Name, body.Email, body.Password, body.ConfirmPassword)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.SignUpResponse{User: user})
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var body api.SignInRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	accessToken, user, err := h.auth.SignIn(body.Email, body.Password)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	// The cookie's transport expiry mirrors the token TTL; the token carries
	// its own cryptographic expiry regardless.
	http.SetCookie(w, h.accessCookie(accessToken, int(h.cfg.JwtTTL().Seconds())))

	writeJSON(w, http.StatusOK, api.SignInResponse{User: user, AccessToken: accessToken})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	claims := mw.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.User(claims.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.UserResponse{User: user})
}

// ForgotPassword returns the raw reset token to the caller, who is
// responsible for delivering it out of band. Unlike SignIn, an unknown email
// is reported as such.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body api.ForgotPasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	rawToken, err := h.auth.ForgotPassword(body.Email)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ForgotPasswordResponse{Token: rawToken})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	rawToken := chi.URLParam(r, "token")

	var body api.ResetPasswordRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.auth.ResetPassword(rawToken, body.Password, body.ConfirmPassword); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ResetPasswordResponse{Message: "Successfully reset the password"})
}

// Logout clears the transport cookie. The token itself stays valid until its
// own expiry; no server-side session state is tracked.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.accessCookie("", -1))

	writeJSON(w, http.StatusOK, api.LogoutResponse{Message: "Logged out successfully"})
}
