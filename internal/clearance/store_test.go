package clearance

import (
	"net/http"
	"testing"
	"time"
)

func testCookies() []*http.Cookie {
	return []*http.Cookie{
		{Name: "cf_clearance", Value: "abc123"},
		{Name: "JSESSIONID", Value: "xyz"},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(time.Minute)
	s.Set("AZ", testCookies(), "test-ua")

	cookies, ua, ok := s.Get("AZ")
	if !ok {
		t.Fatal("Expected a cached entry")
	}
	if len(cookies) != 2 {
		t.Errorf("Expected 2 cookies, got %d", len(cookies))
	}
	if ua != "test-ua" {
		t.Errorf("Expected the stored user agent, got %q", ua)
	}
}

func TestStoreMissReturnsFalse(t *testing.T) {
	s := NewStore(time.Minute)
	if _, _, ok := s.Get("NM"); ok {
		t.Error("Empty store should miss")
	}
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(10 * time.Millisecond)
	s.Set("AZ", testCookies(), "ua")

	time.Sleep(25 * time.Millisecond)

	if _, _, ok := s.Get("AZ"); ok {
		t.Error("Expired entry should miss")
	}
	if s.Len() != 0 {
		t.Errorf("Expired entry should not count, Len = %d", s.Len())
	}
}

func TestStoreIgnoresEmptyCookieSet(t *testing.T) {
	s := NewStore(time.Minute)
	s.Set("AZ", nil, "ua")
	if _, _, ok := s.Get("AZ"); ok {
		t.Error("Empty cookie set should not be stored")
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(time.Minute)
	s.Set("AZ", testCookies(), "ua")
	s.Delete("AZ")
	if _, _, ok := s.Get("AZ"); ok {
		t.Error("Deleted entry should miss")
	}
}
