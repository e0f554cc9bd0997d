package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Keys are refetched at most this often, even when an unknown kid shows up.
const refreshInterval = time.Minute

var ErrKeyNotFound = errors.New("signing key not found")

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// KeySet resolves RS256 verification keys from an identity provider's JWKS endpoint.
type KeySet struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	refreshed time.Time
}

func NewKeySet(jwksURL string, client *http.Client) *KeySet {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &KeySet{
		url:    jwksURL,
		client: client,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// Keyfunc plugs into jwt.Parse for RSA signed tokens.
func (s *KeySet) Keyfunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errors.New("kid header not found")
	}
	return s.Key(kid)
}

func (s *KeySet) Key(kid string) (*rsa.PublicKey, error) {
	if key := s.lookup(kid); key != nil {
		return key, nil
	}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	if key := s.lookup(kid); key != nil {
		return key, nil
	}
	return nil, ErrKeyNotFound
}

func (s *KeySet) lookup(kid string) *rsa.PublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[kid]
}

func (s *KeySet) refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.refreshed) < refreshInterval && len(s.keys) > 0 {
		return nil
	}

	resp, err := s.client.Get(s.url)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			return fmt.Errorf("jwks key %s: %w", k.Kid, err)
		}
		keys[k.Kid] = pub
	}
	s.keys = keys
	s.refreshed = time.Now()
	return nil
}

func (k jsonWebKey) publicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
