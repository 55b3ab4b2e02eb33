package orders

import (
	"fmt"

	"github.com/speps/go-hashids/v2"
)

// ReferenceGenerator turns internal order ids into short customer-facing
// codes. Hashids keeps them non-sequential without another column; the salt
// must stay stable across deploys or old references stop decoding.
type ReferenceGenerator struct {
	h *hashids.HashID
}

func NewReferenceGenerator(salt string) (*ReferenceGenerator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O, 1/I ambiguity

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("init hashids: %w", err)
	}
	return &ReferenceGenerator{h: h}, nil
}

func (g *ReferenceGenerator) Generate(orderID int64) (string, error) {
	code, err := g.h.EncodeInt64([]int64{orderID})
	if err != nil {
		return "", fmt.Errorf("encode order reference: %w", err)
	}
	return "PSL-" + code, nil
}
