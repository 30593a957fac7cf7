package backing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"heliochain/ledger"
	"heliochain/storage"
)

// KeyCodec translates typed row ids to and from raw store keys. Encoded
// keys must sort in a stable order so prefix walks are deterministic.
type KeyCodec[K comparable] interface {
	EncodeKey(id K) []byte
	DecodeKey(raw []byte) (K, error)
}

// KV stores RLP-encoded rows in a storage.Database under a fixed prefix.
// Storage faults are programmer/environment errors, not business failures,
// so they surface as panics and are downgraded at the precompile boundary
// like any other unexpected fault.
type KV[K comparable, E ledger.Entity[E]] struct {
	db        storage.Database
	prefix    []byte
	codec     KeyCodec[K]
	newEntity func() E
}

// NewKV returns a store reading and writing rows of type E under prefix.
func NewKV[K comparable, E ledger.Entity[E]](
	db storage.Database,
	prefix []byte,
	codec KeyCodec[K],
	newEntity func() E,
) *KV[K, E] {
	return &KV[K, E]{db: db, prefix: prefix, codec: codec, newEntity: newEntity}
}

func (s *KV[K, E]) storeKey(id K) []byte {
	encoded := s.codec.EncodeKey(id)
	key := make([]byte, 0, len(s.prefix)+len(encoded))
	key = append(key, s.prefix...)
	return append(key, encoded...)
}

func (s *KV[K, E]) Get(id K) (E, bool) {
	ok, err := s.db.Has(s.storeKey(id))
	if err != nil {
		panic(fmt.Errorf("backing: has %x: %w", s.storeKey(id), err))
	}
	if !ok {
		var zero E
		return zero, false
	}
	raw, err := s.db.Get(s.storeKey(id))
	if err != nil {
		panic(fmt.Errorf("backing: get %x: %w", s.storeKey(id), err))
	}
	entity := s.newEntity()
	if err := rlp.DecodeBytes(raw, entity); err != nil {
		panic(fmt.Errorf("backing: decode row %x: %w", s.storeKey(id), err))
	}
	return entity, true
}

func (s *KV[K, E]) Put(id K, entity E) {
	raw, err := rlp.EncodeToBytes(entity)
	if err != nil {
		panic(fmt.Errorf("backing: encode row %x: %w", s.storeKey(id), err))
	}
	if err := s.db.Put(s.storeKey(id), raw); err != nil {
		panic(fmt.Errorf("backing: put %x: %w", s.storeKey(id), err))
	}
}

func (s *KV[K, E]) Remove(id K) {
	if err := s.db.Delete(s.storeKey(id)); err != nil {
		panic(fmt.Errorf("backing: delete %x: %w", s.storeKey(id), err))
	}
}

func (s *KV[K, E]) Contains(id K) bool {
	ok, err := s.db.Has(s.storeKey(id))
	if err != nil {
		panic(fmt.Errorf("backing: has %x: %w", s.storeKey(id), err))
	}
	return ok
}

func (s *KV[K, E]) Keys() []K {
	var keys []K
	err := s.db.IteratePrefix(s.prefix, func(key, _ []byte) bool {
		id, err := s.codec.DecodeKey(key[len(s.prefix):])
		if err != nil {
			panic(fmt.Errorf("backing: decode key %x: %w", key, err))
		}
		keys = append(keys, id)
		return true
	})
	if err != nil {
		panic(fmt.Errorf("backing: iterate %x: %w", s.prefix, err))
	}
	return keys
}

func (s *KV[K, E]) Size() int {
	count := 0
	err := s.db.IteratePrefix(s.prefix, func([]byte, []byte) bool {
		count++
		return true
	})
	if err != nil {
		panic(fmt.Errorf("backing: iterate %x: %w", s.prefix, err))
	}
	return count
}
