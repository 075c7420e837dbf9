// Package cache keeps OOB records in a JSON file. The file plays the part of
// the out of band channel: one device stores the record it generated, the
// other loads it before pairing.
package cache

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/lesc"
)

type oobCache struct {
	filename string
	lock     sync.RWMutex
}

// New returns a lesc.OobCache backed by filename. The file is created on the
// first Store.
func New(filename string) lesc.OobCache {
	return &oobCache{filename: filename}
}

// Store saves rec for a. A record for a that is already there is only
// overwritten with replace set.
func (oc *oobCache) Store(a lesc.Addr, rec lesc.OobRecord, replace bool) error {
	if err := checkRecord(a, &rec); err != nil {
		return err
	}

	oc.lock.Lock()
	defer oc.lock.Unlock()

	records, err := oc.read()
	if err != nil {
		return err
	}

	if _, ok := records[a.String()]; ok && !replace {
		return errors.Errorf("%v: oob record for %v already published", oc.filename, a)
	}
	records[a.String()] = rec

	return oc.write(records)
}

// Load returns the record published for a.
func (oc *oobCache) Load(a lesc.Addr) (lesc.OobRecord, error) {
	oc.lock.RLock()
	defer oc.lock.RUnlock()

	records, err := oc.read()
	if err != nil {
		return lesc.OobRecord{}, err
	}

	rec, ok := records[a.String()]
	if !ok {
		return lesc.OobRecord{}, errors.Errorf("%v: no oob record for %v", oc.filename, a)
	}
	if err := checkRecord(a, &rec); err != nil {
		return lesc.OobRecord{}, errors.Wrap(err, oc.filename)
	}
	return rec, nil
}

// Clear drops every record.
func (oc *oobCache) Clear() error {
	oc.lock.Lock()
	defer oc.lock.Unlock()

	if err := os.Remove(oc.filename); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// checkRecord makes sure rec decodes and belongs to a. A record without an
// address takes a's.
func checkRecord(a lesc.Addr, rec *lesc.OobRecord) error {
	if a == nil || len(a.Bytes()) != 6 {
		return errors.Errorf("invalid address %v", a)
	}

	if rec.Address == "" {
		rec.Address = a.String()
	} else if lesc.NewAddr(rec.Address).String() != a.String() {
		return errors.Errorf("oob record for %v filed under %v", rec.Address, a)
	}

	if _, _, err := rec.Values(); err != nil {
		return errors.Wrapf(err, "oob record for %v", a)
	}
	return nil
}

func (oc *oobCache) read() (map[string]lesc.OobRecord, error) {
	records := map[string]lesc.OobRecord{}

	in, err := ioutil.ReadFile(oc.filename)
	if os.IsNotExist(err) {
		return records, nil
	}
	if err != nil {
		return nil, err
	}

	if err := jsoniter.Unmarshal(in, &records); err != nil {
		return nil, errors.Wrapf(err, "%v: corrupt oob cache", oc.filename)
	}
	if records == nil {
		records = map[string]lesc.OobRecord{}
	}
	return records, nil
}

// write replaces the file in one rename so a reader never sees half of it.
func (oc *oobCache) write(records map[string]lesc.OobRecord) error {
	out, err := jsoniter.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := ioutil.TempFile(filepath.Dir(oc.filename), filepath.Base(oc.filename)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), oc.filename)
}
