package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/softdesk/internal/apperror"
	"github.com/sakif/softdesk/internal/auth"
	"github.com/sakif/softdesk/internal/service"
)

const (
	stateCookie  = "oauth_state"
	intentCookie = "oauth_intent"
	stateMaxAge  = 10 * time.Minute

	intentLogin = "login"
	intentLink  = "link"
)

// AuthHandler covers sign-up, password login, logout and the optional GitHub
// OAuth flow.
//
//	POST /api/signup            → UserService.Register
//	POST /api/token             → AuthService.Login, sets the token cookie
//	POST /api/logout            → clears the token cookie
//	GET  /api/me                → the acting user
//	GET  /auth/github/login     → redirect to GitHub (sign in)
//	GET  /auth/github/link      → redirect to GitHub (link to the signed-in account)
//	GET  /auth/github/callback  → finish either flow
type AuthHandler struct {
	auth          *service.AuthService
	users         *service.UserService
	github        *auth.GitHubProvider // nil when GitHub sign-in is disabled
	tokenTTL      time.Duration
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler returns an AuthHandler. github may be nil.
func NewAuthHandler(
	authSvc *service.AuthService,
	users *service.UserService,
	github *auth.GitHubProvider,
	tokenTTL time.Duration,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:          authSvc,
		users:         users,
		github:        github,
		tokenTTL:      tokenTTL,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// TokenResponse is returned by every successful login.
type TokenResponse struct {
	Access    string `json:"access"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignup creates an account. HTTP: POST /api/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleToken exchanges username and password for an access token.
// HTTP: POST /api/token
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondWithToken(w, res)
}

// HandleLogout clears the token cookie. Tokens are stateless, so a token
// copied elsewhere stays valid until it expires. HTTP: POST /api/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, auth.CookieName)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Logged out."})
}

// HandleMe returns the acting user. HTTP: GET /api/me (RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := actor(r)
	if user == nil {
		writeError(w, apperror.Unauthenticated(""))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGitHubLogin starts the sign-in flow. HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	h.redirectToGitHub(w, r, intentLogin)
}

// HandleGitHubLink starts the account-linking flow for the signed-in user.
// HTTP: GET /auth/github/link (RequireAuth)
func (h *AuthHandler) HandleGitHubLink(w http.ResponseWriter, r *http.Request) {
	h.redirectToGitHub(w, r, intentLink)
}

// HandleGitHubCallback completes whichever flow set the intent cookie.
// HTTP: GET /auth/github/callback?code=...&state=...
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || r.URL.Query().Get("state") != state.Value {
		h.logger.Warn("github callback: state mismatch")
		writeError(w, apperror.BadRequest("Invalid OAuth state."))
		return
	}
	intent := intentLogin
	if c, err := r.Cookie(intentCookie); err == nil && c.Value == intentLink {
		intent = intentLink
	}
	// single use
	h.clearCookie(w, stateCookie)
	h.clearCookie(w, intentCookie)

	if denied := r.URL.Query().Get("error"); denied != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", denied))
		writeError(w, apperror.Unauthenticated("GitHub authorization was denied."))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "This field is required."))
		return
	}

	gh, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		writeError(w, apperror.Unauthenticated("GitHub authentication failed."))
		return
	}

	if intent == intentLink {
		user, err := h.auth.LinkGitHub(r.Context(), actor(r), gh)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
		return
	}

	res, err := h.auth.LoginWithGitHub(r.Context(), gh)
	if err != nil {
		writeError(w, err)
		return
	}
	h.respondWithToken(w, res)
}

func (h *AuthHandler) redirectToGitHub(w http.ResponseWriter, r *http.Request, intent string) {
	if h.github == nil {
		writeError(w, errGitHubDisabled)
		return
	}

	state := auth.NewState()
	h.setCookie(w, stateCookie, state, stateMaxAge)
	h.setCookie(w, intentCookie, intent, stateMaxAge)

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

var errGitHubDisabled = apperror.NotFoundMessage("GitHub sign-in is not configured.")

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, res *service.AuthResult) {
	h.setCookie(w, auth.CookieName, res.Token, h.tokenTTL)
	writeJSON(w, http.StatusOK, TokenResponse{
		Access:    res.Token,
		TokenType: "Bearer",
		ExpiresIn: int(h.tokenTTL.Seconds()),
	})
}

// setCookie writes an HttpOnly, SameSite=Lax cookie. Secure is on in release
// mode, which is expected to sit behind HTTPS.
func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
