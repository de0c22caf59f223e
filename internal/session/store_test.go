package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"asicrev/internal/core"
	"asicrev/internal/form"
)

func TestCreateAndGet(t *testing.T) {
	s := NewStore(10, time.Minute, nil)
	f := form.New([]core.ASIC{{ID: "a1", Power: 100}})

	id := s.Create(f)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid session id, got %q", id)
	}
	got, ok := s.Get(id)
	if !ok || got != f {
		t.Fatalf("expected stored form back")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", s.Len())
	}

	s.Delete(id)
	if _, ok := s.Get(id); ok {
		t.Fatal("expected session deleted")
	}
}

func TestGetRejectsMalformedID(t *testing.T) {
	s := NewStore(10, time.Minute, nil)
	if _, ok := s.Get("not-a-uuid"); ok {
		t.Fatal("malformed id must not resolve")
	}
}

func TestCapacityDropsOldestSession(t *testing.T) {
	s := NewStore(1, time.Minute, nil)
	first := s.Create(form.New(nil))
	second := s.Create(form.New(nil))
	if _, ok := s.Get(first); ok {
		t.Fatal("oldest session should be dropped")
	}
	if _, ok := s.Get(second); !ok {
		t.Fatal("newest session should be kept")
	}
}

func TestCookieRoundTrip(t *testing.T) {
	s := NewStore(10, 30*time.Minute, nil)
	f := form.New(nil)
	id := s.Create(f)

	rr := httptest.NewRecorder()
	s.SetCookie(rr, httptest.NewRequest(http.MethodGet, "/", nil), id)
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName || c.Value != id || !c.HttpOnly || c.MaxAge != 1800 {
		t.Fatalf("unexpected cookie %+v", c)
	}

	req := httptest.NewRequest(http.MethodPost, "/form/unit", nil)
	req.AddCookie(c)
	got, gotID, ok := s.FromRequest(req)
	if !ok || got != f || gotID != id {
		t.Fatalf("FromRequest did not resolve the session")
	}
}

func TestFromRequestMissingOrUnknown(t *testing.T) {
	s := NewStore(10, time.Minute, nil)

	if _, _, ok := s.FromRequest(httptest.NewRequest(http.MethodPost, "/", nil)); ok {
		t.Fatal("request without cookie must not resolve")
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: uuid.NewString()})
	if _, id, ok := s.FromRequest(req); ok || id == "" {
		t.Fatal("unknown session must not resolve but should report its id")
	}
}
