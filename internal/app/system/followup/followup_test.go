package followup_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/rekaphub/internal/app/system/followup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hashKey = []byte("0123456789abcdef0123456789abcdef")

func TestSet_AddHas(t *testing.T) {
	s := followup.NewSet(0)
	assert.False(t, s.Has("a1"))

	s.Add("a1")
	s.Add("a1")
	s.Add("")
	assert.True(t, s.Has("a1"))
	assert.Equal(t, 1, s.Len())
}

func TestSet_EvictsOldest(t *testing.T) {
	s := followup.NewSet(3, "a", "b", "c")
	s.Add("d")
	assert.Equal(t, []string{"b", "c", "d"}, s.IDs())
	assert.False(t, s.Has("a"))
}

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec := followup.NewCookieCodec(hashKey, "", 10, false)

	s := followup.NewSet(10, "a1", "a2")
	rec := httptest.NewRecorder()
	require.NoError(t, codec.Save(rec, s))

	req := httptest.NewRequest("GET", "/followup", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	got := codec.Load(req)
	assert.Equal(t, []string{"a1", "a2"}, got.IDs())
}

func TestCookieCodec_TamperedIsEmpty(t *testing.T) {
	codec := followup.NewCookieCodec(hashKey, "", 10, false)
	req := httptest.NewRequest("GET", "/followup", nil)
	req.AddCookie(&http.Cookie{Name: followup.DefaultCookieName, Value: "garbage"})
	assert.Equal(t, 0, codec.Load(req).Len())

	other := followup.NewCookieCodec([]byte("another-key-another-key-another-k"), "", 10, false)
	rec := httptest.NewRecorder()
	require.NoError(t, other.Save(rec, followup.NewSet(10, "x")))
	req = httptest.NewRequest("GET", "/followup", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	assert.Equal(t, 0, codec.Load(req).Len())
}

func TestCookieCodec_ShrinksToFit(t *testing.T) {
	codec := followup.NewCookieCodec(hashKey, "", 500, false)
	s := followup.NewSet(500)
	for i := 0; i < 500; i++ {
		s.Add(fmt.Sprintf("0000000-0000-0000-0000-%012d", i))
	}
	rec := httptest.NewRecorder()
	require.NoError(t, codec.Save(rec, s))

	assert.Less(t, s.Len(), 500)
	assert.True(t, s.Has(fmt.Sprintf("0000000-0000-0000-0000-%012d", 499)))
	assert.LessOrEqual(t, len(rec.Result().Cookies()[0].Value), 4096)
}
