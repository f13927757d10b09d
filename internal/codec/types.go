package codec

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"battleship-ai/internal/game"
	"battleship-ai/internal/merkle"
	"battleship-ai/internal/zk"
)

// Secret is the defender's private commitment state.
type Secret struct {
	Fleet   game.Fleet   `json:"fleet"`
	Tree    *merkle.Tree `json:"tree"`
	SaltHex string       `json:"salt_hex"`
}

func (s Secret) Salt() (*big.Int, error) {
	if s.SaltHex == "" {
		return nil, errors.New("missing salt in secret")
	}
	return ParseHex(s.SaltHex)
}

// Root is the salted root published to the attacker.
func (s Secret) Root() (*big.Int, error) {
	if s.Tree == nil {
		return nil, errors.New("secret has no tree")
	}
	salt, err := s.Salt()
	if err != nil {
		return nil, err
	}
	return merkle.SaltedRoot(salt, s.Tree.Root()), nil
}

type ShotProofPayload struct {
	Proof  []byte        `json:"proof"`
	Public zk.ShotPublic `json:"public"`
}

// FormatHex renders x as 0x-prefixed hex.
func FormatHex(x *big.Int) string { return fmt.Sprintf("0x%x", x) }

// ParseHex accepts hex with or without the 0x prefix.
func ParseHex(s string) (*big.Int, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if h == "" {
		return nil, fmt.Errorf("empty hex value %q", s)
	}
	n, ok := new(big.Int).SetString(h, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex value %q", s)
	}
	return n, nil
}
