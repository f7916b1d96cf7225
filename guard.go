package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
)

// pruneAbove is the number of tracked clients after which stale entries
// are dropped on the next check.
const pruneAbove = 1024

// contactGuard limits contact submissions to one per interval per client.
// Clients are keyed by a salted hash of their IP, so raw addresses are
// never held or logged.
type contactGuard struct {
	mu       sync.Mutex
	interval time.Duration
	salt     string
	clock    clock.Clock
	lastSeen map[string]time.Time
}

func newContactGuard(interval time.Duration, clk clock.Clock) *contactGuard {
	if clk == nil {
		clk = clock.New()
	}
	return &contactGuard{
		interval: interval,
		salt:     generateSalt(),
		clock:    clk,
		lastSeen: make(map[string]time.Time),
	}
}

func generateSalt() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Fatal("Failed to generate hashing salt:", err)
	}
	return hex.EncodeToString(bytes)
}

// hashIP is consistent per IP for the life of the process.
func (g *contactGuard) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + g.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

// allow reports whether key may submit now, and otherwise how long until
// it may.
func (g *contactGuard) allow(key string) (bool, time.Duration) {
	if g.interval <= 0 {
		return true, 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if len(g.lastSeen) > pruneAbove {
		for k, t := range g.lastSeen {
			if now.Sub(t) >= g.interval {
				delete(g.lastSeen, k)
			}
		}
	}

	last, ok := g.lastSeen[key]
	if ok {
		if elapsed := now.Sub(last); elapsed < g.interval {
			return false, g.interval - elapsed
		}
	}
	g.lastSeen[key] = now
	return true, 0
}

// release forgets key so a failed submission does not count.
func (g *contactGuard) release(key string) {
	g.mu.Lock()
	delete(g.lastSeen, key)
	g.mu.Unlock()
}

// contactSentKey is set on the gin context by handlers that delivered a
// message. Requests without it do not consume the client's slot.
const contactSentKey = "contact_sent"

// middleware rejects over-limit requests through limited, which writes
// the response, after setting Retry-After.
func (g *contactGuard) middleware(limited func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := g.hashIP(c.ClientIP())
		ok, wait := g.allow(client)
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			log.Printf("level=warn msg=\"contact rate limited\" client=%s retry_after=%ds", client, secs)
			limited(c)
			c.Abort()
			return
		}
		c.Next()
		if !c.GetBool(contactSentKey) {
			g.release(client)
		}
	}
}
