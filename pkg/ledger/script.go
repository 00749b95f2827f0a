package ledger

import (
	"bytes"
	"encoding/hex"

	"github.com/vulpemventures/go-elements/network"
	"golang.org/x/crypto/blake2b"
)

// Script is an on-chain program reference: a registered kind plus the
// serialized parameters it was instantiated with. Scripts with different
// parameters have different hashes, hence different addresses and policy
// ids.
type Script struct {
	Kind   string
	Params []byte
}

func NewScript(kind string, params []byte) Script {
	return Script{kind, params}
}

// Hash returns the hex encoded blake2b-256 digest of the script.
func (s Script) Hash() string {
	buf := &bytes.Buffer{}
	// writes to a bytes.Buffer never fail.
	WriteString(buf, s.Kind)
	WriteBytes(buf, s.Params)
	hash := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:])
}

// Address returns the address of the outputs locked by the script.
func (s Script) Address(net *network.Network) (string, error) {
	hash, _ := hex.DecodeString(s.Hash())
	return ScriptAddress(hash, net)
}
