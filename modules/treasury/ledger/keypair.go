package ledger

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/treasury-network/treasury-engine/common/errs"
)

// Signer signs operation payloads on behalf of one authority.
type Signer interface {
	Address() Address
	Sign(message []byte) []byte
}

// Make sure Keypair implements the Signer interface
var _ Signer = (*Keypair)(nil)

// Keypair is an ed25519 authority keypair.
type Keypair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewKeypair generates a fresh random keypair.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "can't generate keypair")
	}
	return &Keypair{pub: pub, priv: priv}, nil
}

// KeypairFromSeed derives a keypair from a 32-byte seed.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errs.InvalidArgument, "seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Keypair{pub: priv.Public().(ed25519.PublicKey), priv: priv}, nil
}

// LoadKeypair reads a hex-encoded 32-byte seed from a key file.
func LoadKeypair(path string) (*Keypair, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't read key file %q", path)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid key file %q", path)
	}
	return KeypairFromSeed(seed)
}

func (k *Keypair) Address() Address {
	return AddressFromBytes(k.pub)
}

func (k *Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.priv, message)
}

// Seed returns the hex-encoded private seed for persisting to a key file.
func (k *Keypair) Seed() string {
	return hex.EncodeToString(k.priv.Seed())
}
