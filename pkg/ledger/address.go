package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/vulpemventures/go-elements/network"
)

const (
	pubkeyHashLen = 20
	scriptHashLen = 32
	segwitVersion = 0
)

type AddressType int

const (
	PubKeyHashAddress AddressType = iota
	ScriptHashAddress
)

func (t AddressType) String() string {
	switch t {
	case PubKeyHashAddress:
		return "pubkeyhash"
	case ScriptHashAddress:
		return "script"
	default:
		return "unknown"
	}
}

// DecodedAddress is the payload of an address: its type and the hash it
// commits to.
type DecodedAddress struct {
	Type AddressType
	Hash string
}

// ScriptAddress returns the segwit v0 address committing to the given
// 32-byte script hash.
func ScriptAddress(scriptHash []byte, net *network.Network) (string, error) {
	if len(scriptHash) != scriptHashLen {
		return "", fmt.Errorf("%w: script hash must be %d bytes", ErrInvalidAddress, scriptHashLen)
	}
	return encodeSegwit(net.Bech32, scriptHash)
}

// PubKeyAddress returns the segwit v0 address committing to the hash160
// of the given public key.
func PubKeyAddress(pubkey []byte, net *network.Network) (string, error) {
	return encodeSegwit(net.Bech32, btcutil.Hash160(pubkey))
}

// PubKeyHash returns the hex encoded hash160 of a public key.
func PubKeyHash(pubkey []byte) string {
	return hex.EncodeToString(btcutil.Hash160(pubkey))
}

// DecodeAddress parses a segwit v0 address and classifies it by the length
// of its witness program.
func DecodeAddress(addr string) (*DecodedAddress, error) {
	_, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}
	if len(data) < 1 || data[0] != segwitVersion {
		return nil, fmt.Errorf("%w: unsupported witness version", ErrInvalidAddress)
	}
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	switch len(program) {
	case pubkeyHashLen:
		return &DecodedAddress{PubKeyHashAddress, hex.EncodeToString(program)}, nil
	case scriptHashLen:
		return &DecodedAddress{ScriptHashAddress, hex.EncodeToString(program)}, nil
	default:
		return nil, fmt.Errorf("%w: invalid witness program length", ErrInvalidAddress)
	}
}

func encodeSegwit(hrp string, program []byte) (string, error) {
	data, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, append([]byte{segwitVersion}, data...))
}
