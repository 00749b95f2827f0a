package escrow

import "fmt"

// Redeemer selects the release path of a position spend.
type Redeemer uint8

const (
	Cancel Redeemer = iota
	Claim
)

func RedeemerFromString(str string) (Redeemer, error) {
	switch str {
	case "cancel":
		return Cancel, nil
	case "claim":
		return Claim, nil
	default:
		return 0, fmt.Errorf("unknown redeemer %q", str)
	}
}

func DecodeRedeemer(buf []byte) (Redeemer, error) {
	if len(buf) != 1 || buf[0] > byte(Claim) {
		return 0, ErrMalformedRedeemer
	}
	return Redeemer(buf[0]), nil
}

func (r Redeemer) Bytes() []byte {
	return []byte{byte(r)}
}

func (r Redeemer) String() string {
	switch r {
	case Cancel:
		return "cancel"
	case Claim:
		return "claim"
	default:
		return "unknown"
	}
}
