package vtcore

// NotificationPayload carries one desktop notification event (OSC 99), assembled
// from the semicolon/colon-delimited metadata fields and the trailing payload
// text, possibly spread across several escape sequences ("d=0" continuations).
type NotificationPayload struct {
	ID          string
	Done        bool
	PayloadType string // "title", "body", "close", or "?" for a capability query
	Encoding    string // "" for UTF-8 text, "1" for base64
	Actions     []string
	TrackClose  bool
	Timeout     int
	AppName     string
	Type        string
	IconName    string
	IconCacheID string
	Sound       string
	Urgency     int
	Occasion    string
	Data        []byte
}

// NotificationProvider handles desktop notification requests (OSC 99).
// Notify returns a reply string to send back over the wire (e.g. for a
// capability query), or an empty string if no reply is needed.
type NotificationProvider interface {
	Notify(payload *NotificationPayload) string
}

// NoopNotification discards all desktop notifications.
type NoopNotification struct{}

func (NoopNotification) Notify(payload *NotificationPayload) string { return "" }

var _ NotificationProvider = NoopNotification{}

// DesktopNotification delivers an OSC 99 desktop notification to the configured
// provider, routing through middleware if configured.
func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	if t.middleware != nil && t.middleware.DesktopNotification != nil {
		t.middleware.DesktopNotification(payload, t.desktopNotificationInternal)
		return
	}
	t.desktopNotificationInternal(payload)
}

func (t *Terminal) desktopNotificationInternal(payload *NotificationPayload) {
	t.mu.RLock()
	provider := t.notificationProvider
	t.mu.RUnlock()

	if provider == nil {
		return
	}
	if response := provider.Notify(payload); response != "" {
		t.writeResponseString(response)
	}
}
