package api

import (
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/zynexa/go-zynexa-server/global"
)

// newValidator reports json field names instead of struct field names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// set session cookie in the response (httpOnly)
func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	cookie := http.Cookie{
		Name:     global.Conf.Session.CookieName,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		Path:     "/",
		Secure:   global.Conf.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(c.Writer, &cookie)
}

func clearSessionCookie(c *gin.Context) {
	cookie := http.Cookie{
		Name:     global.Conf.Session.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		Secure:   global.Conf.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(c.Writer, &cookie)
}

func sessionToken(c *gin.Context) string {
	token, err := c.Cookie(global.Conf.Session.CookieName)
	if err != nil {
		return ""
	}
	return token
}
