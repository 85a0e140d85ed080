package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(true)
	defer c.Close()

	etag := c.Set("registry:q=jack", []byte(`[1]`), time.Minute)
	data, got, ok := c.Get("registry:q=jack")
	if !ok || string(data) != `[1]` || got != etag {
		t.Fatalf("Get = %q, %q, %v", data, got, ok)
	}

	c.Set("old", []byte("x"), -time.Second)
	if _, _, ok := c.Get("old"); ok {
		t.Fatal("expired entry returned")
	}
}

func TestDisabledCache(t *testing.T) {
	c := New(false)
	etag := c.Set("k", []byte("v"), time.Minute)
	if etag != ComputeETag([]byte("v")) {
		t.Fatalf("etag = %q", etag)
	}
	if _, _, ok := c.Get("k"); ok {
		t.Fatal("disabled cache returned an entry")
	}
}

func TestPurgePrefix(t *testing.T) {
	c := New(true)
	defer c.Close()
	c.Set(PrefixRegistry+"a", []byte("1"), time.Minute)
	c.Set(PrefixRegistry+"b", []byte("2"), time.Minute)
	c.Set(PrefixHistory+"2019", []byte("3"), time.Minute)

	if n := c.PurgePrefix(PrefixRegistry); n != 2 {
		t.Fatalf("purged %d, want 2", n)
	}
	if _, _, ok := c.Get(PrefixHistory + "2019"); !ok {
		t.Fatal("history entry should survive")
	}
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("body"))
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{"*", true},
		{etag, true},
		{`W/"nope", ` + etag, true},
		{`W/"nope"`, false},
	}
	for _, tt := range tests {
		if got := CheckETagMatch(tt.header, etag); got != tt.want {
			t.Errorf("CheckETagMatch(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
