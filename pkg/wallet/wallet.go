package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/tdex-network/tdex-escrow/pkg/ledger"
	"github.com/vulpemventures/go-elements/network"
	"github.com/vulpemventures/go-elements/payment"
)

var (
	// ErrInvalidPrivateKey is returned when the given key is not a valid
	// secp256k1 private key.
	ErrInvalidPrivateKey = errors.New("private key must be 32 bytes")
	// ErrNullWallet is returned when using a wallet with no key.
	ErrNullWallet = errors.New("wallet must not be null")
)

// Wallet is a single-key signer whose address is the P2WPKH of its public
// key.
type Wallet struct {
	privateKey *btcec.PrivateKey
}

// NewWallet generates a random key.
func NewWallet() (*Wallet, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &Wallet{key}, nil
}

// NewWalletFromKey restores a wallet from a serialized private key.
func NewWalletFromKey(privateKey []byte) (*Wallet, error) {
	if len(privateKey) != btcec.PrivKeyBytesLen {
		return nil, ErrInvalidPrivateKey
	}
	key, _ := btcec.PrivKeyFromBytes(privateKey)
	return &Wallet{key}, nil
}

func (w *Wallet) validate() error {
	if w == nil || w.privateKey == nil {
		return ErrNullWallet
	}
	return nil
}

func (w *Wallet) PrivateKey() []byte {
	return w.privateKey.Serialize()
}

func (w *Wallet) PublicKey() []byte {
	return w.privateKey.PubKey().SerializeCompressed()
}

// PubKeyHash returns the hex encoded hash160 of the compressed public key.
func (w *Wallet) PubKeyHash() string {
	return hex.EncodeToString(btcutil.Hash160(w.PublicKey()))
}

// Address returns the P2WPKH address of the wallet for the given network.
func (w *Wallet) Address(net *network.Network) (string, error) {
	if err := w.validate(); err != nil {
		return "", err
	}
	return payment.FromPublicKey(w.privateKey.PubKey(), net, nil).WitnessPubKeyHash()
}

// SignTx adds the wallet's witness to the transaction. Any change to the
// transaction body after signing invalidates the witness.
func (w *Wallet) SignTx(tx *ledger.Tx) error {
	if err := w.validate(); err != nil {
		return err
	}
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	pubkey := w.PublicKey()
	for _, wit := range tx.Witnesses {
		if bytes.Equal(wit.PubKey, pubkey) {
			return nil
		}
	}
	sig := ecdsa.Sign(w.privateKey, hash)
	tx.Witnesses = append(tx.Witnesses, ledger.Witness{
		PubKey:    pubkey,
		Signature: sig.Serialize(),
	})
	return nil
}

// VerifyWitness checks the witness signature against the transaction hash
// and returns the pubkey hash of the signer.
func VerifyWitness(txHash []byte, witness ledger.Witness) (string, bool) {
	pubkey, err := btcec.ParsePubKey(witness.PubKey)
	if err != nil {
		return "", false
	}
	sig, err := ecdsa.ParseDERSignature(witness.Signature)
	if err != nil {
		return "", false
	}
	if !sig.Verify(txHash, pubkey) {
		return "", false
	}
	return ledger.PubKeyHash(witness.PubKey), true
}
