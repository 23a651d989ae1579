package api

// --- ТРАНСПОРТ -> ДВИЖОК ---

// InboundMessage - одно входящее сообщение из чат-транспорта.
// Движок не знает, откуда оно пришло (WebSocket, мессенджер, тест) -
// транспорт обязан привести всё к этому виду.
type InboundMessage struct {
	// SenderID - стабильный идентификатор отправителя (номер/JID/токен).
	// Он же является ключом игрока в хранилище.
	SenderID string `json:"senderId"`

	// Text - сырой текст действия или команды.
	Text string `json:"text"`

	// IsGroup - сообщение из группового чата.
	// В группах обрабатываются только команды, свободные действия игнорируются.
	IsGroup bool `json:"isGroup"`
}

// --- ДВИЖОК -> ТРАНСПОРТ ---

// OutboundMessage - ответ движка, готовый к отправке.
// Если ImageURL непустой, транспорт отправляет изображение с Text как подписью.
type OutboundMessage struct {
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// --- ДАШБОРД ---

// StatsSnapshot - сводка для статусной страницы (/api/stats).
type StatsSnapshot struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Players   int    `json:"players"`
	NPCs      int    `json:"npcs"`
	Locations int    `json:"locations"`
	GameDay   int    `json:"gameDay"`
	GameHour  int    `json:"gameHour"`
	Weather   string `json:"weather"`
	Uptime    string `json:"uptime"`
}
