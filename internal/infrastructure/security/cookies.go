package security

import (
	"net/http"
	"time"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"

	// clearedCookieValue overwrites both cookies on logout.
	clearedCookieValue = "logout"
)

// CookieAttacher sets and reads the two session cookies.
type CookieAttacher struct {
	signer     *JWTSigner
	accessTTL  time.Duration
	refreshTTL time.Duration
	secure     bool
	now        func() time.Time
}

func NewCookieAttacher(signer *JWTSigner, accessTTL, refreshTTL time.Duration, secure bool) *CookieAttacher {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &CookieAttacher{
		signer:     signer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		secure:     secure,
		now:        time.Now,
	}
}

// Attach signs user (and the refresh token) into the access and refresh cookies.
func (a *CookieAttacher) Attach(w http.ResponseWriter, user domain.TokenUser, refreshToken string) error {
	access, err := a.signer.SignAccessToken(user, a.accessTTL)
	if err != nil {
		return err
	}
	refresh, err := a.signer.SignRefreshToken(user, refreshToken, a.refreshTTL)
	if err != nil {
		return err
	}

	now := a.now()
	http.SetCookie(w, a.cookie(AccessCookieName, access, now.Add(a.accessTTL)))
	http.SetCookie(w, a.cookie(RefreshCookieName, refresh, now.Add(a.refreshTTL)))
	return nil
}

// Clear overwrites both cookies with an already expired marker.
func (a *CookieAttacher) Clear(w http.ResponseWriter) {
	now := a.now()
	http.SetCookie(w, a.cookie(AccessCookieName, clearedCookieValue, now))
	http.SetCookie(w, a.cookie(RefreshCookieName, clearedCookieValue, now))
}

// ReadAccess returns the user signed into the access cookie.
func (a *CookieAttacher) ReadAccess(r *http.Request) (domain.TokenUser, error) {
	c, err := r.Cookie(AccessCookieName)
	if err != nil || c.Value == "" || c.Value == clearedCookieValue {
		return domain.TokenUser{}, domain.ErrAuthenticationInvalid()
	}
	return a.signer.VerifyAccessToken(c.Value)
}

// ReadRefresh returns the user and refresh token signed into the refresh cookie.
func (a *CookieAttacher) ReadRefresh(r *http.Request) (RefreshClaims, error) {
	c, err := r.Cookie(RefreshCookieName)
	if err != nil || c.Value == "" || c.Value == clearedCookieValue {
		return RefreshClaims{}, domain.ErrAuthenticationInvalid()
	}
	return a.signer.VerifyRefreshToken(c.Value)
}

func (a *CookieAttacher) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secure, // prod=true, dev=false
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	}
}
