package models

// Message is one shared clip at users/{uid}/messages/{id}.
type Message struct {
	Text       string `json:"text" validate:"required"`
	Type       string `json:"type,omitempty"` // "text" or "link"
	Folder     string `json:"folder,omitempty"`
	DeviceID   string `json:"deviceId,omitempty"`
	DeviceName string `json:"deviceName,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Pinned     bool   `json:"pinned,omitempty"`
	Starred    bool   `json:"starred,omitempty"`
	EditedAt   int64  `json:"editedAt,omitempty"`
}

func (m *Message) Validate() error {
	return validate.Struct(m)
}

// Folder groups messages under users/{uid}/folders/{id}.
type Folder struct {
	Name      string `json:"name" validate:"required"`
	Icon      string `json:"icon,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

func (f *Folder) Validate() error {
	return validate.Struct(f)
}

// GlobalMessage is one post on the shared global board.
type GlobalMessage struct {
	Text       string           `json:"text" validate:"required"`
	AuthorID   string           `json:"authorId" validate:"required"`
	AuthorName string           `json:"authorName,omitempty"`
	Timestamp  int64            `json:"timestamp"`
	Likes      map[string]bool  `json:"likes,omitempty"`
	Replies    map[string]Reply `json:"replies,omitempty"`
}

func (g *GlobalMessage) Validate() error {
	return validate.Struct(g)
}

// Reply is a threaded answer under a global message.
type Reply struct {
	Text       string `json:"text"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Notification is one entry under notifications/{uid}/{id}.
type Notification struct {
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Read      bool   `json:"read"`
	Timestamp int64  `json:"timestamp"`
}
