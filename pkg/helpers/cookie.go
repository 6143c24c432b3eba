package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// the refresh token never travels with page requests
	refreshPath = "/api"
)

// Manager writes the auth cookie pair with a shared domain and Secure flag.
type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	http.SetCookie(c.Writer, m.cookie(AccessCookie, access, "/", maxAgeFrom(aexp)))
	http.SetCookie(c.Writer, m.cookie(RefreshCookie, refresh, refreshPath, maxAgeFrom(rexp)))
}

func (m *Manager) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, m.cookie(AccessCookie, "", "/", -1))
	http.SetCookie(c.Writer, m.cookie(RefreshCookie, "", refreshPath, -1))
}

func (m *Manager) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   m.Domain,
		MaxAge:   maxAge,
		Secure:   m.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// maxAgeFrom never returns 0 for a live token, since MaxAge 0 means a session cookie.
func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec <= 0 {
		return -1
	}
	return sec
}
