package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rigado/lesc"
)

func TestOobCache_Store(t *testing.T) {
	dir, err := os.MkdirTemp("", "oobcache")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	a := lesc.AddressWithType{Addr: lesc.NewAddr("C0:FF:EE:00:00:01"), Type: lesc.AddrTypeRandom}
	var cv, rv [16]byte
	for i := range cv {
		cv[i], rv[i] = byte(i), byte(0xf0+i)
	}
	rec := lesc.NewOobRecord(a, cv, rv)

	c := New(filepath.Join(dir, "test.cache"))
	if err := c.Store(a.Addr, rec, false); err != nil {
		t.Fatalf("expected nil error but got %s instead", err)
	}

	if err := c.Store(a.Addr, rec, false); err == nil {
		t.Fatal("expected an error storing twice without replace")
	}
	if err := c.Store(a.Addr, rec, true); err != nil {
		t.Fatalf("replace: %v", err)
	}

	loaded, err := New(filepath.Join(dir, "test.cache")).Load(lesc.NewAddr("c0:ff:ee:00:00:01"))
	if err != nil {
		t.Fatalf("expected to find address in cache but did not: %s", err)
	}
	if loaded != rec {
		t.Fatalf("stored and loaded records are not equal: %+v / %+v", rec, loaded)
	}

	c2, r2, err := loaded.Values()
	if err != nil {
		t.Fatal(err)
	}
	if c2 != cv || r2 != rv {
		t.Fatal("values mismatch")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(a.Addr); err == nil {
		t.Fatal("expected miss after clear")
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clearing an empty cache: %v", err)
	}
}

func TestOobRecordValues(t *testing.T) {
	for _, rec := range []lesc.OobRecord{
		{Confirm: "zz", Random: "00"},
		{Confirm: "00112233445566778899aabbccddeeff", Random: "0011"},
	} {
		if _, _, err := rec.Values(); err == nil {
			t.Errorf("expected error for %+v", rec)
		}
	}
}

func TestOobCacheChecksRecords(t *testing.T) {
	dir, err := os.MkdirTemp("", "oobcache")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fn := filepath.Join(dir, "oob.json")
	c := New(fn)
	a := lesc.NewAddr("c0:ff:ee:00:00:01")
	good := "00112233445566778899aabbccddeeff"

	for _, tc := range []struct {
		name string
		addr lesc.Addr
		rec  lesc.OobRecord
	}{
		{"short confirm", a, lesc.OobRecord{Confirm: "0011", Random: good}},
		{"bad random", a, lesc.OobRecord{Confirm: good, Random: "not hex"}},
		{"other device", a, lesc.OobRecord{Address: "11:22:33:44:55:66", Confirm: good, Random: good}},
		{"bad address", lesc.NewAddr("c0:ff:ee"), lesc.OobRecord{Confirm: good, Random: good}},
	} {
		if err := c.Store(tc.addr, tc.rec, true); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
	if _, err := os.Stat(fn); !os.IsNotExist(err) {
		t.Fatal("rejected records should not create the cache file")
	}

	// a record without an address is filed under the one it is stored for
	if err := c.Store(lesc.NewAddr("C0:FF:EE:00:00:01"), lesc.OobRecord{Confirm: good, Random: good}, false); err != nil {
		t.Fatal(err)
	}
	rec, err := c.Load(a)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Address != a.String() {
		t.Fatalf("address %q", rec.Address)
	}

	if err := os.WriteFile(fn, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(a); err == nil {
		t.Fatal("expected an error for a corrupt cache file")
	}
}
