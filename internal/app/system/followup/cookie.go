package followup

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/securecookie"
)

// DefaultCookieName is the acknowledgment cookie's name.
const DefaultCookieName = "rekaphub-followup"

const cookieMaxAge = 180 * 24 * time.Hour

type jsonSerializer struct{}

func (jsonSerializer) Serialize(src interface{}) ([]byte, error) { return json.Marshal(src) }

func (jsonSerializer) Deserialize(src []byte, dst interface{}) error {
	return json.Unmarshal(src, dst)
}

// CookieCodec loads and saves a Set in an HMAC-signed cookie.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	name   string
	max    int
	secure bool
}

// NewCookieCodec signs with hashKey (32 or 64 bytes recommended).
func NewCookieCodec(hashKey []byte, name string, max int, secure bool) *CookieCodec {
	if name == "" {
		name = DefaultCookieName
	}
	sc := securecookie.New(hashKey, nil)
	sc.SetSerializer(jsonSerializer{})
	sc.MaxAge(int(cookieMaxAge.Seconds()))
	return &CookieCodec{sc: sc, name: name, max: max, secure: secure}
}

// Load returns the set carried by r. A missing, tampered or expired cookie
// yields an empty set.
func (c *CookieCodec) Load(r *http.Request) *Set {
	ck, err := r.Cookie(c.name)
	if err != nil {
		return NewSet(c.max)
	}
	var ids []string
	if err := c.sc.Decode(c.name, ck.Value, &ids); err != nil {
		return NewSet(c.max)
	}
	return NewSet(c.max, ids...)
}

// Save writes s to w. If the encoded value is too long for a cookie the
// oldest ids are dropped until it fits.
func (c *CookieCodec) Save(w http.ResponseWriter, s *Set) error {
	var (
		value string
		err   error
	)
	for {
		value, err = c.sc.Encode(c.name, s.ids)
		if err == nil || s.Len() == 0 {
			break
		}
		s.dropOldest()
	}
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
