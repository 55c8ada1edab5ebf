package handlers

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Feel-The-Beats-Go/pkg/provider"
	"Feel-The-Beats-Go/pkg/session"
)

const (
	stateCookieName   = "ftb_auth_state"
	sessionCookieName = "ftb_session"

	// stateTTL bounds how long an OAuth round trip may take before the
	// callback is rejected as stale.
	stateTTL   = 5 * time.Minute
	sessionTTL = 24 * time.Hour
)

// signValue returns value plus an HMAC-SHA256 signature so the cookie cannot
// be altered by the client.
func signValue(value string, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return value + "|" + sig
}

// verifyValue checks the signature appended by signValue and returns the
// original value.
func verifyValue(signed string, key []byte) (string, bool) {
	value, sig, ok := strings.Cut(signed, "|")
	if !ok {
		return "", false
	}
	want, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", false
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	if !hmac.Equal(mac.Sum(nil), want) {
		return "", false
	}
	return value, true
}

// Auth routes /api/auth/{provider} and /api/auth/{provider}/callback.
func (app *Application) Auth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/auth/"), "/")
	if id, ok := strings.CutSuffix(rest, "/callback"); ok {
		app.oauthCallback(w, r, id)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		http.NotFound(w, r)
		return
	}
	app.login(w, r, rest)
}

// login starts the authorization-code flow: it plants a signed single-use
// state cookie and redirects the browser to the provider's consent page.
func (app *Application) login(w http.ResponseWriter, r *http.Request, providerID string) {
	prov, err := app.Registry.Get(providerID)
	switch {
	case errors.Is(err, provider.ErrNotSupported):
		respondJSONError(w, http.StatusBadRequest, "unknown provider "+providerID)
		return
	case errors.Is(err, provider.ErrNotConfigured):
		log.WithField("provider", providerID).Error("login requested for unconfigured provider")
		respondJSONError(w, http.StatusInternalServerError, "provider not configured")
		return
	case err != nil:
		respondJSONError(w, http.StatusInternalServerError, "login unavailable")
		return
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.WithError(err).Error("generate oauth state")
		respondJSONError(w, http.StatusInternalServerError, "login unavailable")
		return
	}
	state := base64.RawURLEncoding.EncodeToString(buf)
	issued := strconv.FormatInt(time.Now().Unix(), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    signValue(state+":"+issued, app.SignKey),
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   app.secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})

	conf := prov.OAuth(app.callbackURL(r, providerID))
	metricLoginsStarted.WithLabelValues(providerID).Inc()
	http.Redirect(w, r, conf.AuthCodeURL(state, prov.AuthParams...), http.StatusFound)
}

// oauthCallback finishes the flow. The state check happens before any
// outbound call: a mismatched or stale state never reaches the token
// endpoint.
func (app *Application) oauthCallback(w http.ResponseWriter, r *http.Request, providerID string) {
	prov, err := app.Registry.Get(providerID)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "unknown provider "+providerID)
		return
	}
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		metricLoginsFailed.WithLabelValues(providerID, "provider_denied").Inc()
		app.redirectError(w, r, e)
		return
	}

	state, ok := app.consumeState(w, r)
	if !ok || q.Get("state") == "" || q.Get("state") != state {
		metricLoginsFailed.WithLabelValues(providerID, "csrf_mismatch").Inc()
		app.redirectError(w, r, "csrf_mismatch")
		return
	}

	conf := prov.OAuth(app.callbackURL(r, providerID))
	tok, err := conf.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.WithError(err).WithField("provider", providerID).Warn("token exchange failed")
		metricLoginsFailed.WithLabelValues(providerID, "exchange").Inc()
		app.redirectError(w, r, "auth_failed")
		return
	}
	profile, err := prov.Adapter.FetchProfile(r.Context(), tok.AccessToken)
	if err != nil {
		log.WithError(err).WithField("provider", providerID).Warn("profile fetch failed")
		metricLoginsFailed.WithLabelValues(providerID, "profile").Inc()
		app.redirectError(w, r, "auth_failed")
		return
	}

	blob, err := app.Sessions.Encode(session.Session{
		Provider:     providerID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ProfileName:  profile.DisplayName,
	})
	if err != nil {
		log.WithError(err).Error("encode session")
		metricLoginsFailed.WithLabelValues(providerID, "session").Inc()
		app.redirectError(w, r, "auth_failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    blob,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   app.secureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
	metricLoginsCompleted.WithLabelValues(providerID).Inc()
	log.WithFields(map[string]any{"provider": providerID, "profile": profile.DisplayName}).Info("login completed")
	http.Redirect(w, r, "/?auth_success=true", http.StatusFound)
}

// consumeState reads, expires, and validates the state cookie. The cookie is
// cleared as soon as it is presented so a state value cannot be replayed.
func (app *Application) consumeState(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return "", false
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Path: "/", MaxAge: -1})

	val, ok := verifyValue(c.Value, app.SignKey)
	if !ok {
		return "", false
	}
	state, tsStr, ok := strings.Cut(val, ":")
	if !ok {
		return "", false
	}
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return "", false
	}
	if time.Since(time.Unix(ts, 0)) > stateTTL {
		return "", false
	}
	return state, true
}

// Logout clears the session cookie and sends the browser home.
func (app *Application) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}

// Me reports whether the request carries a usable session. It never fails:
// any undecodable cookie simply reads as unauthenticated.
func (app *Application) Me(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Authenticated bool   `json:"authenticated"`
		Provider      string `json:"provider,omitempty"`
		ProfileName   string `json:"profileName,omitempty"`
	}{}
	if sess, ok := app.sessionFromRequest(r); ok {
		resp.Authenticated = true
		resp.Provider = sess.Provider
		resp.ProfileName = sess.ProfileName
	}
	respondJSON(w, http.StatusOK, resp)
}

// sessionFromRequest decrypts the session cookie. Sessions naming a provider
// that is no longer registered are treated as absent.
func (app *Application) sessionFromRequest(r *http.Request) (session.Session, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return session.Session{}, false
	}
	sess, err := app.Sessions.Decode(c.Value)
	if err != nil {
		return session.Session{}, false
	}
	if _, err := app.Registry.Get(sess.Provider); errors.Is(err, provider.ErrNotSupported) {
		return session.Session{}, false
	}
	return sess, true
}

func (app *Application) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(code), http.StatusFound)
}

func (app *Application) secureRequest(r *http.Request) bool {
	return app.Production || r.TLS != nil
}

// callbackURL builds the absolute redirect URI registered with the provider.
// APP_URL wins when set; otherwise the URL is reconstructed from the request,
// trusting X-Forwarded-Proto from the reverse proxy.
func (app *Application) callbackURL(r *http.Request, providerID string) string {
	base := strings.TrimSuffix(app.AppURL, "/")
	if base != "" {
		if !strings.HasPrefix(base, "http") {
			base = "https://" + base
		}
		return base + "/api/auth/" + providerID + "/callback"
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil || app.Production {
			scheme = "https"
		}
	}
	return scheme + "://" + r.Host + "/api/auth/" + providerID + "/callback"
}
