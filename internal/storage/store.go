// Package storage - контракт хранилища сущностей и его реализации.
// Раскладка: три коллекции (players, npcs, world), внутри - JSON-документы
// по строковому ключу. Хранилище обязано быть read-after-write
// консистентным в рамках одного процесса.
package storage

import (
	"encoding/json"
	"sync"

	"livium-server/internal/domain"
)

// Store - инжектируемый интерфейс персистентности.
// Отсутствующая запись - это (nil, nil), а не ошибка.
type Store interface {
	GetPlayer(id string) (*domain.Player, error)
	PutPlayer(p *domain.Player) error
	Players() ([]*domain.Player, error)

	GetNPC(id string) (*domain.NPC, error)
	PutNPC(n *domain.NPC) error
	NPCs() ([]*domain.NPC, error)

	GetWorld() (*domain.World, error)
	PutWorld(w *domain.World) error

	Close() error
}

// --- IN-MEMORY РЕАЛИЗАЦИЯ (тесты и dev-режим) ---

// MemoryStore хранит все в картах. Записи копируются через JSON,
// чтобы вызывающий не делил память с хранилищем.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string][]byte
	npcs    map[string][]byte
	world   []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players: map[string][]byte{},
		npcs:    map[string][]byte{},
	}
}

func (s *MemoryStore) GetPlayer(id string) (*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	var p domain.Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MemoryStore) PutPlayer(p *domain.Player) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = raw
	return nil
}

func (s *MemoryStore) Players() ([]*domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Player, 0, len(s.players))
	for _, raw := range s.players {
		var p domain.Player
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, nil
}

func (s *MemoryStore) GetNPC(id string) (*domain.NPC, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.npcs[id]
	if !ok {
		return nil, nil
	}
	var n domain.NPC
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *MemoryStore) PutNPC(n *domain.NPC) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.npcs[n.ID] = raw
	return nil
}

func (s *MemoryStore) NPCs() ([]*domain.NPC, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.NPC, 0, len(s.npcs))
	for _, raw := range s.npcs {
		var n domain.NPC
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, nil
}

func (s *MemoryStore) GetWorld() (*domain.World, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.world == nil {
		return nil, nil
	}
	var w domain.World
	if err := json.Unmarshal(s.world, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *MemoryStore) PutWorld(w *domain.World) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world = raw
	return nil
}

func (s *MemoryStore) Close() error { return nil }
