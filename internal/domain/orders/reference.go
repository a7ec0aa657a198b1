package orders

import (
	"fmt"
	"strings"

	"github.com/speps/go-hashids/v2"
)

// ReferenceGenerator turns the upstream order id into a short, non-guessable
// customer-facing reference like "ORD-8K3JT9".
type ReferenceGenerator struct {
	hd *hashids.HashID
}

func NewReferenceGenerator(salt string) (*ReferenceGenerator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 6
	data.Alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

	hd, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("init reference generator: %w", err)
	}
	return &ReferenceGenerator{hd: hd}, nil
}

func (g *ReferenceGenerator) Generate(upstreamID int64) (string, error) {
	enc, err := g.hd.EncodeInt64([]int64{upstreamID})
	if err != nil {
		return "", err
	}
	return "ORD-" + strings.ToUpper(enc), nil
}
