package keystore

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/dnscore/internal/dns/common/log"
	"github.com/haukened/dnscore/internal/dns/domain"
)

var (
	bucketAnchors = []byte("anchors")
	bucketTSIG    = []byte("tsig")
)

// boltStore implements Store over a bbolt database. Anchor keys are
// zone + NUL + big-endian key tag, so all anchors of a zone share a
// prefix and a zone can pin several keys.
type boltStore struct {
	db     *bbolt.DB
	logger log.Logger
}

// Open opens (or creates) a Bolt database at path and ensures buckets
// exist. logger may be nil.
func Open(path string, logger log.Logger) (Store, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAnchors); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketTSIG)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db, logger: logger}, nil
}

func (s *boltStore) Close() error { return s.db.Close() }

func anchorKey(zone string, keyTag uint16) []byte {
	k := make([]byte, 0, len(zone)+3)
	k = append(k, zone...)
	k = append(k, 0)
	return binary.BigEndian.AppendUint16(k, keyTag)
}

func anchorPrefix(zone string) []byte {
	return append([]byte(zone), 0)
}

func (s *boltStore) PutAnchor(anchor domain.TrustAnchor) error {
	zone := domain.CanonicalName(anchor.Zone)
	value, err := encodeAnchor(anchor)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAnchors).Put(anchorKey(zone, anchor.KeyTag()), value)
	})
}

func (s *boltStore) Anchors(_ context.Context, zone string) ([]domain.TrustAnchor, error) {
	zone = domain.CanonicalName(zone)
	prefix := anchorPrefix(zone)
	var anchors []domain.TrustAnchor
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketAnchors).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			a, err := decodeAnchor(zone, v)
			if err != nil {
				return err
			}
			anchors = append(anchors, a)
		}
		return nil
	})
	return anchors, err
}

func (s *boltStore) DeleteAnchors(zone string) error {
	prefix := anchorPrefix(domain.CanonicalName(zone))
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketAnchors)
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *boltStore) PutTSIGKey(key domain.TSIGKey) error {
	name := domain.CanonicalName(key.Name)
	value, err := encodeTSIGKey(key)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTSIG).Put([]byte(name), value)
	})
}

func (s *boltStore) TSIGKey(name string) (domain.TSIGKey, bool) {
	name = domain.CanonicalName(name)
	var key domain.TSIGKey
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketTSIG).Get([]byte(name))
		if v == nil {
			return nil
		}
		k, err := decodeTSIGKey(name, v)
		if err != nil {
			return err
		}
		key, found = k, true
		return nil
	})
	if err != nil {
		s.logger.Error(map[string]any{"key": name, "error": err.Error()}, "TSIG key lookup failed")
		return domain.TSIGKey{}, false
	}
	return key, found
}

func (s *boltStore) DeleteTSIGKey(name string) error {
	name = domain.CanonicalName(name)
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTSIG).Delete([]byte(name))
	})
}
