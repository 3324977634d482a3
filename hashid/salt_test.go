package hashid

import (
	"strings"
	"sync"
	"testing"
)

func TestNewSalt(t *testing.T) {
	t.Run("has requested length", func(t *testing.T) {
		for _, length := range []int{1, 7, 16, DefaultSaltLength, 100} {
			salt, err := NewSalt(length)
			if err != nil {
				t.Fatalf("NewSalt(%d) unexpected error: %v", length, err)
			}
			if len(salt) != length {
				t.Errorf("NewSalt(%d) returned length %d", length, len(salt))
			}
		}
	})

	t.Run("uses only base62 characters", func(t *testing.T) {
		salt, err := NewSalt(500)
		if err != nil {
			t.Fatalf("NewSalt() unexpected error: %v", err)
		}
		for i, c := range salt {
			if !strings.ContainsRune(saltChars, c) {
				t.Errorf("invalid character %q at position %d", c, i)
			}
		}
	})

	t.Run("rejects non-positive length", func(t *testing.T) {
		for _, length := range []int{0, -1} {
			if _, err := NewSalt(length); err != ErrSaltLength {
				t.Errorf("NewSalt(%d) error = %v, want ErrSaltLength", length, err)
			}
		}
	})

	t.Run("is usable as a codec salt", func(t *testing.T) {
		salt, err := NewSalt(DefaultSaltLength)
		if err != nil {
			t.Fatalf("NewSalt() unexpected error: %v", err)
		}
		if _, err := New(Config{Salt: salt, MinLength: DefaultMinLength}); err != nil {
			t.Errorf("New() with generated salt failed: %v", err)
		}
	})

	t.Run("unique under concurrent use", func(t *testing.T) {
		const n = 200
		var (
			mu   sync.Mutex
			wg   sync.WaitGroup
			seen = make(map[string]bool, n)
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				salt, err := NewSalt(DefaultSaltLength)
				if err != nil {
					t.Errorf("NewSalt() unexpected error: %v", err)
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if seen[salt] {
					t.Errorf("duplicate salt %q", salt)
				}
				seen[salt] = true
			}()
		}
		wg.Wait()
	})
}
