// Package cryptox implements password credential hashing for the identity
// store. Hashes are argon2id, encoded in the PHC string format so that every
// stored value carries its own algorithm parameters and salt:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<base64 salt>$<base64 key>
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todolist/internal/common"
	"golang.org/x/crypto/argon2"
)

const algorithm = "argon2id"

// Cost ceilings. Stored hashes above them are treated as corrupt rather
// than verified, and configured parameters must stay below them.
const (
	MaxMemoryKiB  = 1 << 20 // 1 GiB
	MaxIterations = 64
)

// Argon2Params are the cost parameters written into every new hash.
// Memory is in KiB.
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params returns the production cost settings.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Memory:      64 * 1024,
		Iterations:  1,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Validate checks that the cost parameters are non-zero and within the
// ceilings.
func (p Argon2Params) Validate() error {
	if p.Memory == 0 || p.Iterations == 0 || p.Parallelism == 0 {
		return fmt.Errorf("argon2: zero cost parameter")
	}
	if p.Memory > MaxMemoryKiB {
		return fmt.Errorf("argon2: memory %d KiB exceeds %d KiB", p.Memory, MaxMemoryKiB)
	}
	if p.Iterations > MaxIterations {
		return fmt.Errorf("argon2: iterations %d exceed %d", p.Iterations, MaxIterations)
	}
	return nil
}

// PasswordCodec hashes and verifies passwords. It is safe for concurrent use.
type PasswordCodec struct {
	params    Argon2Params
	fixedSalt []byte
}

// NewPasswordCodec returns a codec. When fixedSalt is non-empty every hash
// uses it; otherwise each hash gets a fresh random salt.
func NewPasswordCodec(params Argon2Params, fixedSalt []byte) *PasswordCodec {
	return &PasswordCodec{params: params, fixedSalt: fixedSalt}
}

// DecodeSalt parses a base64 salt setting (standard alphabet, padding
// optional). An empty string yields a nil salt.
func DecodeSalt(s string) ([]byte, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if s == "" {
		return nil, nil
	}
	salt, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	if len(salt) < 8 {
		return nil, fmt.Errorf("invalid salt: need at least 8 bytes, got %d", len(salt))
	}
	return salt, nil
}

func (c *PasswordCodec) salt() ([]byte, error) {
	if len(c.fixedSalt) > 0 {
		return c.fixedSalt, nil
	}
	salt := make([]byte, c.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt generation: %w", err)
	}
	return salt, nil
}

// Hash derives an argon2id key from password and returns its PHC encoding.
func (c *PasswordCodec) Hash(password string) (string, error) {
	salt, err := c.salt()
	if err != nil {
		return "", err
	}

	p := c.params
	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithm, argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash. A wrong password
// is (false, nil); an encoding that cannot be parsed returns an error
// matching common.ErrCorruptCredential.
func (c *PasswordCodec) Verify(password, encoded string) (bool, error) {
	p, salt, want, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, uint32(len(want)))
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrCorruptCredential, fmt.Sprintf(format, args...))
}

func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, corrupt("expected 5 fields")
	}
	if parts[1] != algorithm {
		return p, nil, nil, corrupt("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, corrupt("bad version field")
	}
	if version != argon2.Version {
		return p, nil, nil, corrupt("unsupported version %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, corrupt("bad parameter field")
	}
	if err := p.Validate(); err != nil {
		return p, nil, nil, corrupt("%v", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, corrupt("bad salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, corrupt("bad key")
	}

	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))
	return p, salt, key, nil
}
