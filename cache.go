package lesc

import (
	"encoding/hex"
	"fmt"
)

// OobRecord is what a device hands its peer over the out of band channel:
// the commitment c and the randomizer r, hex encoded, little endian.
type OobRecord struct {
	Address  string   `json:"address"`
	AddrType AddrType `json:"addrType"`
	Confirm  string   `json:"confirm"`
	Random   string   `json:"random"`
}

// NewOobRecord builds the record published for a.
func NewOobRecord(a AddressWithType, c, r [16]byte) OobRecord {
	rec := OobRecord{
		AddrType: a.Type,
		Confirm:  hex.EncodeToString(c[:]),
		Random:   hex.EncodeToString(r[:]),
	}
	if a.Addr != nil {
		rec.Address = a.Addr.String()
	}
	return rec
}

// Values decodes the commitment and randomizer.
func (r OobRecord) Values() ([16]byte, [16]byte, error) {
	var c, rv [16]byte

	if err := decode16(r.Confirm, &c); err != nil {
		return c, rv, fmt.Errorf("confirm: %v", err)
	}
	if err := decode16(r.Random, &rv); err != nil {
		return c, rv, fmt.Errorf("random: %v", err)
	}
	return c, rv, nil
}

func decode16(s string, out *[16]byte) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(out) {
		return fmt.Errorf("invalid length %d", len(b))
	}
	copy(out[:], b)
	return nil
}

// OobCache stores OOB records by device address.
type OobCache interface {
	Store(Addr, OobRecord, bool) error
	Load(Addr) (OobRecord, error)
	Clear() error
}
