// Package hashid turns numeric database keys into short opaque tokens and back.
//
// Tokens follow the hashids scheme: the alphabet is permuted with a secret
// salt, numbers are written in the permuted base, and guard and filler
// symbols pad the result to a minimum length. Tokens are byte-for-byte
// compatible with other hashids implementations given the same salt,
// alphabet and minimum length, so identifiers already handed out to clients
// keep decoding.
//
// A Codec is immutable once built and safe for concurrent use.
package hashid

import (
	"errors"
	"math"
	"math/bits"
	"slices"
)

const (
	// DefaultAlphabet is the symbol set used for user-facing tokens.
	// Changing it invalidates every token already issued.
	DefaultAlphabet = "ABCDEFGHIJKLMNPQRSTUVWXYZ123456789"

	// DefaultMinLength is the minimum token length used for user-facing tokens.
	DefaultMinLength = 10

	// MinAlphabetLength is the smallest accepted number of unique symbols.
	MinAlphabetLength = 16

	separatorCandidates = "cfhistuCFHISTU"
	sepDiv              = 3.5
	guardDiv            = 12
)

var (
	ErrEmptySalt         = errors.New("hashid: salt cannot be empty")
	ErrAlphabetTooShort  = errors.New("hashid: alphabet must contain at least 16 unique characters")
	ErrAlphabetHasSpace  = errors.New("hashid: alphabet cannot contain spaces")
	ErrNegativeMinLength = errors.New("hashid: minimum length cannot be negative")
	ErrNegativeID        = errors.New("hashid: id cannot be negative")
	ErrNoIDs             = errors.New("hashid: nothing to encode")
)

// Config holds the inputs that fully determine the token mapping.
type Config struct {
	Salt      string
	Alphabet  string // DefaultAlphabet when empty
	MinLength int
}

// Codec encodes and decodes tokens for a single Config.
type Codec struct {
	salt      []rune
	alphabet  []rune
	seps      []rune
	guards    []rune
	minLength int
}

// New validates cfg and derives the salted alphabet, separators and guards.
func New(cfg Config) (*Codec, error) {
	if cfg.Salt == "" {
		return nil, ErrEmptySalt
	}
	if cfg.MinLength < 0 {
		return nil, ErrNegativeMinLength
	}

	source := cfg.Alphabet
	if source == "" {
		source = DefaultAlphabet
	}

	alphabet := uniqueRunes(source)
	if len(alphabet) < MinAlphabetLength {
		return nil, ErrAlphabetTooShort
	}
	if slices.Contains(alphabet, ' ') {
		return nil, ErrAlphabetHasSpace
	}

	salt := []rune(cfg.Salt)

	var seps []rune
	for _, r := range separatorCandidates {
		if slices.Contains(alphabet, r) {
			seps = append(seps, r)
		}
	}
	alphabet = slices.DeleteFunc(alphabet, func(r rune) bool {
		return slices.Contains(seps, r)
	})
	shuffle(seps, salt)

	if len(seps) == 0 || float64(len(alphabet))/float64(len(seps)) > sepDiv {
		want := int(math.Ceil(float64(len(alphabet)) / sepDiv))
		if want > len(seps) {
			diff := want - len(seps)
			seps = append(seps, alphabet[:diff]...)
			alphabet = alphabet[diff:]
		}
	}

	shuffle(alphabet, salt)

	guardCount := int(math.Ceil(float64(len(alphabet)) / guardDiv))
	var guards []rune
	if len(alphabet) < 3 {
		guards = slices.Clone(seps[:guardCount])
		seps = seps[guardCount:]
	} else {
		guards = slices.Clone(alphabet[:guardCount])
		alphabet = alphabet[guardCount:]
	}

	return &Codec{
		salt:      salt,
		alphabet:  slices.Clone(alphabet),
		seps:      slices.Clone(seps),
		guards:    guards,
		minLength: cfg.MinLength,
	}, nil
}

// Encode returns the token for id.
func (c *Codec) Encode(id int64) (string, error) {
	if id < 0 {
		return "", ErrNegativeID
	}
	return c.encode([]uint64{uint64(id)}), nil
}

// Decode returns the id carried by token. The boolean is false for any
// token that Encode would not have produced under the same Config,
// including tokens that carry more than one number.
func (c *Codec) Decode(token string) (int64, bool) {
	numbers, ok := c.decode(token)
	if !ok || len(numbers) != 1 || numbers[0] > math.MaxInt64 {
		return 0, false
	}
	return int64(numbers[0]), true
}

// EncodeMany packs several numbers into one token.
func (c *Codec) EncodeMany(ids ...uint64) (string, error) {
	if len(ids) == 0 {
		return "", ErrNoIDs
	}
	return c.encode(ids), nil
}

// DecodeMany is the inverse of EncodeMany.
func (c *Codec) DecodeMany(token string) ([]uint64, bool) {
	return c.decode(token)
}

func (c *Codec) encode(numbers []uint64) string {
	alphabet := slices.Clone(c.alphabet)

	var numbersHash uint64
	for i, n := range numbers {
		numbersHash += n % uint64(i+100)
	}

	lottery := alphabet[numbersHash%uint64(len(alphabet))]
	out := make([]rune, 0, max(c.minLength, 2*len(numbers)+1))
	out = append(out, lottery)

	buffer := make([]rune, 0, 1+len(c.salt)+len(alphabet))
	for i, n := range numbers {
		buffer = append(buffer[:0], lottery)
		buffer = append(buffer, c.salt...)
		buffer = append(buffer, alphabet...)
		shuffle(alphabet, buffer)

		start := len(out)
		out = appendNumber(out, n, alphabet)

		if i+1 < len(numbers) {
			n %= uint64(out[start]) + uint64(i)
			out = append(out, c.seps[n%uint64(len(c.seps))])
		}
	}

	if len(out) < c.minLength {
		guard := (numbersHash + uint64(out[0])) % uint64(len(c.guards))
		out = slices.Insert(out, 0, c.guards[guard])

		if len(out) < c.minLength {
			guard = (numbersHash + uint64(out[2])) % uint64(len(c.guards))
			out = append(out, c.guards[guard])
		}
	}

	half := len(alphabet) / 2
	for len(out) < c.minLength {
		shuffle(alphabet, slices.Clone(alphabet))

		padded := make([]rune, 0, len(out)+len(alphabet))
		padded = append(padded, alphabet[half:]...)
		padded = append(padded, out...)
		padded = append(padded, alphabet[:half]...)
		out = padded

		if excess := len(out) - c.minLength; excess > 0 {
			from := excess / 2
			out = out[from : from+c.minLength]
		}
	}

	return string(out)
}

func (c *Codec) decode(token string) ([]uint64, bool) {
	if token == "" {
		return nil, false
	}

	runes := []rune(token)
	for _, r := range runes {
		if !c.isSymbol(r) {
			return nil, false
		}
	}

	parts := splitOn(runes, c.guards)
	breakdown := parts[0]
	if len(parts) == 2 || len(parts) == 3 {
		breakdown = parts[1]
	}
	if len(breakdown) == 0 {
		return nil, false
	}

	lottery := breakdown[0]
	chunks := splitOn(breakdown[1:], c.seps)

	alphabet := slices.Clone(c.alphabet)
	buffer := make([]rune, 0, 1+len(c.salt)+len(alphabet))
	numbers := make([]uint64, 0, len(chunks))

	for _, chunk := range chunks {
		buffer = append(buffer[:0], lottery)
		buffer = append(buffer, c.salt...)
		buffer = append(buffer, alphabet...)
		shuffle(alphabet, buffer)

		n, ok := parseNumber(chunk, alphabet)
		if !ok {
			return nil, false
		}
		numbers = append(numbers, n)
	}

	// Only the exact canonical form of these numbers is accepted.
	if c.encode(numbers) != token {
		return nil, false
	}
	return numbers, true
}

func (c *Codec) isSymbol(r rune) bool {
	return slices.Contains(c.alphabet, r) ||
		slices.Contains(c.seps, r) ||
		slices.Contains(c.guards, r)
}

// shuffle permutes chars in place, driven by salt. The same salt always
// yields the same permutation.
func shuffle(chars, salt []rune) {
	if len(salt) == 0 {
		return
	}

	for i, v, p := len(chars)-1, 0, 0; i > 0; i, v = i-1, v+1 {
		v %= len(salt)
		n := int(salt[v])
		p += n
		j := (n + v + p) % i
		chars[i], chars[j] = chars[j], chars[i]
	}
}

func appendNumber(dst []rune, n uint64, alphabet []rune) []rune {
	base := uint64(len(alphabet))
	start := len(dst)
	for {
		dst = append(dst, alphabet[n%base])
		n /= base
		if n == 0 {
			break
		}
	}
	slices.Reverse(dst[start:])
	return dst
}

func parseNumber(chunk, alphabet []rune) (uint64, bool) {
	base := uint64(len(alphabet))

	var n uint64
	for _, r := range chunk {
		idx := slices.Index(alphabet, r)
		if idx < 0 {
			return 0, false
		}

		hi, lo := bits.Mul64(n, base)
		if hi != 0 {
			return 0, false
		}
		sum, carry := bits.Add64(lo, uint64(idx), 0)
		if carry != 0 {
			return 0, false
		}
		n = sum
	}
	return n, true
}

// splitOn splits s at every rune found in seps, keeping empty parts.
func splitOn(s, seps []rune) [][]rune {
	var parts [][]rune
	start := 0
	for i, r := range s {
		if slices.Contains(seps, r) {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func uniqueRunes(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
