package listener

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vflfantasy/vfl-data/internal/cache"
)

func TestHandlePurgesRegistry(t *testing.T) {
	c := cache.New(true)
	defer c.Close()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		payload string
	}{
		{"insert", `{"op":"INSERT","id":"abc","ts":1700000000}`},
		{"garbage payload", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Set(cache.PrefixRegistry+"search:jack:20", []byte("[]"), time.Minute)
			c.Set(cache.PrefixHistory+"2019", []byte("[]"), time.Minute)

			handle(tt.payload, c, cache.PrefixRegistry, logger)

			if _, _, ok := c.Get(cache.PrefixRegistry + "search:jack:20"); ok {
				t.Fatal("registry entry should be purged")
			}
			if _, _, ok := c.Get(cache.PrefixHistory + "2019"); !ok {
				t.Fatal("history entry should survive")
			}
		})
	}
}
