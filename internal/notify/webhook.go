// Package notify posts fire-and-forget messages to a Discord-compatible
// webhook when objects change.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event tags the kind of lifecycle change being announced.
type Event string

const (
	EventUpload Event = "upload"
	EventDelete Event = "delete"
	EventRename Event = "rename"
)

// Webhook delivers notifications. A Webhook constructed without a URL is
// disabled and drops every message.
type Webhook struct {
	url    string
	name   string
	client *http.Client
	log    *zap.Logger

	wg sync.WaitGroup
}

// New returns a webhook notifier. url may be empty to disable delivery.
func New(url, name string, log *zap.Logger) *Webhook {
	return &Webhook{
		url:    url,
		name:   name,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Notify sends the message asynchronously. Delivery failures are logged and
// never reach the caller.
func (w *Webhook) Notify(event Event, text string) {
	if w.url == "" {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.send(event, text); err != nil {
			w.log.Warn("webhook delivery failed",
				zap.String("event", string(event)),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every in-flight delivery has finished.
func (w *Webhook) Wait() { w.wg.Wait() }

func (w *Webhook) send(event Event, text string) error {
	var content string
	switch event {
	case EventUpload:
		content = fmt.Sprintf(":inbox_tray: New file uploaded\n%s\nFrom %s", text, w.name)
	case EventDelete:
		content = fmt.Sprintf(":outbox_tray: File deleted\n%s\nFrom %s", text, w.name)
	case EventRename:
		content = fmt.Sprintf(":pencil2: File renamed\n%s\nFrom %s", text, w.name)
	default:
		content = fmt.Sprintf("%s\nFrom %s", text, w.name)
	}

	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
