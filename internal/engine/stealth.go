package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and helpers for engine consumers. The board blocks
// non-browser TLS fingerprints, so guest-API fetches go through this client.
type BrowserClient = stealth.BrowserClient

func NewBrowserClient(opts ...stealth.ClientOption) (*BrowserClient, error) {
	return stealth.NewClient(opts...)
}

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }
