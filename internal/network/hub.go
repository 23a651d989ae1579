package network

import (
	"sync"

	"livium-server/pkg/api"
)

// Broadcaster занимается только доставкой исходящих сообщений
// подписанным соединениям. Движок о транспорте не знает.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ID игрока -> личный канал его соединения
	subscribers map[string]chan api.OutboundMessage
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]chan api.OutboundMessage),
	}
}

// Register создает личный канал для игрока.
// Повторное подключение закрывает старый канал.
func (b *Broadcaster) Register(playerID string) chan api.OutboundMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.subscribers[playerID]; ok {
		close(old)
	}

	ch := make(chan api.OutboundMessage, 100)
	b.subscribers[playerID] = ch
	return ch
}

// Unregister удаляет подписчика. Канал, уже замененный повторным
// Register, не трогается.
func (b *Broadcaster) Unregister(playerID string, ch chan api.OutboundMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.subscribers[playerID]; ok && cur == ch {
		close(cur)
		delete(b.subscribers, playerID)
	}
}

// SendTo доставляет сообщение конкретному игроку. Переполненный канал
// не блокирует движок: сообщение отбрасывается.
func (b *Broadcaster) SendTo(msg api.OutboundMessage) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ch, ok := b.subscribers[msg.RecipientID]
	if !ok {
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}

// Broadcast рассылает всем подключенным (системные объявления).
func (b *Broadcaster) Broadcast(msg api.OutboundMessage) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// IsOnline проверяет, подключен ли игрок.
func (b *Broadcaster) IsOnline(playerID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[playerID]
	return ok
}

// SubscriberCount возвращает число активных соединений.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
