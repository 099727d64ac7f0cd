package sealed

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"natively/internal/domain/kv"
)

const (
	saltKey    = "@natively/.seal_salt"
	saltLength = 16

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var ErrTampered = errors.New("sealed value failed authentication")

// Storage шифрует значения выбранных ключей поверх другого Driver.
// Ключ шифрования выводится из секрета через Argon2id с солью, хранящейся рядом с данными.
type Storage struct {
	inner  kv.Driver
	secret []byte
	keys   map[string]struct{}

	mu   sync.Mutex
	aead cipher.AEAD
}

func New(inner kv.Driver, secret string, keys []string) *Storage {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}

	return &Storage{
		inner:  inner,
		secret: []byte(secret),
		keys:   set,
	}
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil || !s.sealed(key) {
		return raw, err
	}

	aead, err := s.loadCipher(ctx)
	if err != nil {
		return nil, err
	}

	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrTampered
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, ErrTampered
	}

	return plain, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if !s.sealed(key) {
		return s.inner.Set(ctx, key, value)
	}

	aead, err := s.loadCipher(ctx)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	// ключ записи служит associated data: шифротекст нельзя переставить под другой ключ
	return s.inner.Set(ctx, key, aead.Seal(nonce, nonce, value, []byte(key)))
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

// Clear стирает и соль: следующая запись создаст новый ключ шифрования
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.inner.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.aead = nil
	s.mu.Unlock()
	return nil
}

func (s *Storage) Close() error {
	return s.inner.Close()
}

func (s *Storage) sealed(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s *Storage) loadCipher(ctx context.Context) (cipher.AEAD, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.aead != nil {
		return s.aead, nil
	}

	salt, err := s.inner.Get(ctx, saltKey)
	if errors.Is(err, kv.ErrNotFound) {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("generate salt: %w", err)
		}
		if err := s.inner.Set(ctx, saltKey, salt); err != nil {
			return nil, fmt.Errorf("store salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load salt: %w", err)
	}

	key := argon2.IDKey(s.secret, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	s.aead = aead
	return aead, nil
}
