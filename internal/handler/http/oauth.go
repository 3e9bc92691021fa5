package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Aphidet6/earth-bettashop/internal/oauth"
	"github.com/Aphidet6/earth-bettashop/internal/service"
	"github.com/Aphidet6/earth-bettashop/pkg/httputil"
)

// OAuthHandler handles the provider login redirect and callback routes.
type OAuthHandler struct {
	providers   map[string]*oauth.Provider
	states      *oauth.StateSigner
	linker      *service.ProviderLinker
	frontendURL string
	logger      *slog.Logger
}

// NewOAuthHandler creates a handler for the given configured providers.
func NewOAuthHandler(
	providers []*oauth.Provider,
	states *oauth.StateSigner,
	linker *service.ProviderLinker,
	frontendURL string,
	logger *slog.Logger,
) *OAuthHandler {
	byName := make(map[string]*oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthHandler{
		providers:   byName,
		states:      states,
		linker:      linker,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Redirect handles GET /api/auth/{provider}. It sends the browser to the
// provider's consent page with a signed state.
func (h *OAuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Success: false,
			Error:   "unknown provider",
		})
		return
	}

	state, err := h.states.Sign()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/auth/{provider}/callback. After verifying the
// state and exchanging the code, it resolves the profile to a local user and
// issues a token. Browser clients are redirected to the frontend with the
// token in the query string; ?json=1 returns it as JSON instead.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Response{
			Success: false,
			Error:   "unknown provider",
		})
		return
	}

	if err := h.states.Verify(r.URL.Query().Get("state")); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "invalid state",
		})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   "missing authorization code",
		})
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "provider code exchange failed",
			slog.String("provider", provider.Name()),
			slog.String("error", err.Error()),
		)
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Success: false,
			Error:   "provider authentication failed",
		})
		return
	}

	_, token, err := h.linker.Resolve(r.Context(), provider.Name(), profile)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if r.URL.Query().Get("json") == "1" {
		httputil.WriteData(w, http.StatusOK, LoginResponse{Token: token})
		return
	}

	redirect := h.frontendURL + "/?token=" + url.QueryEscape(token)
	http.Redirect(w, r, redirect, http.StatusFound)
}
