package headlessterm

import "github.com/danielgatis/go-ansicode"

// NotificationPayload carries one desktop-notification request (OSC 99,
// the kitty notification protocol): metadata keys parsed from the
// `key=value:...` prefix plus the raw payload bytes.
type NotificationPayload = ansicode.NotificationPayload

// NotificationProvider handles desktop notification requests. The returned
// string, if non-empty, is written back to the child verbatim (query
// responses, close/activation reports).
type NotificationProvider interface {
	Notify(payload *NotificationPayload) string
}

// NoopNotification ignores all notification requests.
type NoopNotification struct{}

func (NoopNotification) Notify(payload *NotificationPayload) string { return "" }

var _ NotificationProvider = NoopNotification{}

// WithNotification sets the handler for desktop notifications (OSC 99).
func WithNotification(p NotificationProvider) Option {
	return func(t *Terminal) {
		t.notificationProvider = p
	}
}

// SetNotificationProvider replaces the desktop notification handler at
// runtime.
func (t *Terminal) SetNotificationProvider(p NotificationProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notificationProvider = p
}

// NotificationProvider returns the current desktop notification handler.
func (t *Terminal) NotificationProvider() NotificationProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notificationProvider
}

// DesktopNotification dispatches one notification payload to the provider,
// writing any provider response back to the child.
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
