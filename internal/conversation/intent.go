package conversation

import "context"

// IntentKind selects how the gateway renders an intent.
type IntentKind string

const (
	IntentReply    IntentKind = "reply"
	IntentEditLast IntentKind = "edit_last"
	IntentNotify   IntentKind = "notify"
)

// Button is one keyboard button. Inline buttons carry an Action; reply
// keyboard buttons send their Text back as a message.
type Button struct {
	Text   string `json:"text"`
	Action string `json:"action,omitempty"`
}

// Keyboard is a grid of buttons. Persistent marks a reply keyboard.
type Keyboard struct {
	Rows       [][]Button `json:"rows"`
	Persistent bool       `json:"persistent,omitempty"`
}

// Intent is one outbound message. ChatID is the actor for replies and the
// target chat for notifications. MessageID pins an edit to a message other
// than the chat's last one.
type Intent struct {
	Kind      IntentKind `json:"kind"`
	ChatID    int64      `json:"chatId"`
	MessageID int64      `json:"messageId,omitempty"`
	Text      string     `json:"text"`
	Keyboard  *Keyboard  `json:"keyboard,omitempty"`
}

// MessageRef identifies a delivered message.
type MessageRef struct {
	ChatID    int64 `json:"chatId"`
	MessageID int64 `json:"messageId"`
}

// Gateway delivers intents to the chat platform.
type Gateway interface {
	Deliver(ctx context.Context, intent Intent) (MessageRef, error)
}

func inline(rows ...[]Button) *Keyboard {
	return &Keyboard{Rows: rows}
}

func row(buttons ...Button) []Button {
	return buttons
}

func btn(text string, action ...string) Button {
	return Button{Text: text, Action: EncodeAction(action...)}
}
