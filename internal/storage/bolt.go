package storage

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"livium-server/internal/domain"
)

// Имена бакетов - три верхнеуровневые коллекции.
var (
	bucketPlayers = []byte("players")
	bucketNPCs    = []byte("npcs")
	bucketWorld   = []byte("world")

	worldKey = []byte("world")
)

// BoltStore - файловое хранилище на bbolt. Один файл, три бакета,
// значения - JSON-документы.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt открывает (или создает) файл базы и гарантирует бакеты.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPlayers, bucketNPCs, bucketWorld} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) get(bucket, key []byte, out any) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get(key)
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, out)
	})
	return found, err
}

func (s *BoltStore) put(bucket, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(key, raw)
	})
}

func (s *BoltStore) GetPlayer(id string) (*domain.Player, error) {
	var p domain.Player
	found, err := s.get(bucketPlayers, []byte(id), &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}

func (s *BoltStore) PutPlayer(p *domain.Player) error {
	return s.put(bucketPlayers, []byte(p.ID), p)
}

func (s *BoltStore) Players() ([]*domain.Player, error) {
	var out []*domain.Player
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPlayers).ForEach(func(_, raw []byte) error {
			var p domain.Player
			if err := json.Unmarshal(raw, &p); err != nil {
				return err
			}
			out = append(out, &p)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) GetNPC(id string) (*domain.NPC, error) {
	var n domain.NPC
	found, err := s.get(bucketNPCs, []byte(id), &n)
	if err != nil || !found {
		return nil, err
	}
	return &n, nil
}

func (s *BoltStore) PutNPC(n *domain.NPC) error {
	return s.put(bucketNPCs, []byte(n.ID), n)
}

func (s *BoltStore) NPCs() ([]*domain.NPC, error) {
	var out []*domain.NPC
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNPCs).ForEach(func(_, raw []byte) error {
			var n domain.NPC
			if err := json.Unmarshal(raw, &n); err != nil {
				return err
			}
			out = append(out, &n)
			return nil
		})
	})
	return out, err
}

func (s *BoltStore) GetWorld() (*domain.World, error) {
	var w domain.World
	found, err := s.get(bucketWorld, worldKey, &w)
	if err != nil || !found {
		return nil, err
	}
	return &w, nil
}

func (s *BoltStore) PutWorld(w *domain.World) error {
	return s.put(bucketWorld, worldKey, w)
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
