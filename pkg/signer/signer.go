// Package signer abstracts how the SDK produces ECDSA signatures. Trading
// and relayer clients only see the Signer interface, so a browser-wallet or
// remote signer can be plugged in alongside the built-in key modes.
package signer

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/pkg/errors"
)

// DefaultDerivationPath is the standard Ethereum account path.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// Signer signs 32-byte digests. SignDigest returns a 65-byte r||s||v
// signature with the recovery id in {0, 1}; callers adjust v for the
// consumer (the exchange takes it raw, Gnosis Safe wants v+27).
type Signer interface {
	Address() common.Address
	SignDigest(digest []byte) ([]byte, error)
}

// PrivateKeySigner signs with an in-memory secp256k1 key.
type PrivateKeySigner struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewPrivateKeySigner wraps an existing key.
func NewPrivateKeySigner(key *ecdsa.PrivateKey) *PrivateKeySigner {
	return &PrivateKeySigner{
		key:  key,
		addr: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// FromHex parses a hex private key, with or without 0x prefix.
func FromHex(hexKey string) (*PrivateKeySigner, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return NewPrivateKeySigner(key), nil
}

// FromMnemonic derives the key at path (DefaultDerivationPath when empty)
// from a BIP-39 mnemonic.
func FromMnemonic(mnemonic, path string) (*PrivateKeySigner, error) {
	if path == "" {
		path = DefaultDerivationPath
	}
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, errors.Wrap(err, "parse mnemonic")
	}
	derivation, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse derivation path %s", path)
	}
	account, err := wallet.Derive(derivation, false)
	if err != nil {
		return nil, errors.Wrap(err, "derive account")
	}
	key, err := wallet.PrivateKey(account)
	if err != nil {
		return nil, errors.Wrap(err, "extract private key")
	}
	return NewPrivateKeySigner(key), nil
}

func (s *PrivateKeySigner) Address() common.Address {
	return s.addr
}

func (s *PrivateKeySigner) SignDigest(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, errors.Errorf("digest must be 32 bytes, got %d", len(digest))
	}
	return crypto.Sign(digest, s.key)
}
