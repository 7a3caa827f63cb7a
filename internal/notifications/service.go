package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parthubhe/DeepFakeStudio/internal/config"
)

const userAgent = "DFStudio-Go/0.1.0"

// Service defines the notification surface exposed to console components.
type Service interface {
	NotifyQueueStarted(ctx context.Context, project string, count int) error
	NotifyClipCompleted(ctx context.Context, project, job string) error
	NotifyStitchReady(ctx context.Context, project, url string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		queue:       cfg.Notifications.Queue,
		completions: cfg.Notifications.Completion,
		errors:      cfg.Notifications.Errors,
	}
}

// NewNop returns a Service that discards every notification.
func NewNop() Service { return noopService{} }

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	queue       bool
	completions bool
	errors      bool
}

func (n *ntfyService) NotifyQueueStarted(ctx context.Context, project string, count int) error {
	if !n.queue {
		return nil
	}
	project = strings.TrimSpace(project)
	data := payload{
		title:   "DFStudio - Queue Started",
		message: fmt.Sprintf("Queued %d clips for %s", count, project),
		tags:    []string{"dfstudio", "queue", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyClipCompleted(ctx context.Context, project, job string) error {
	if !n.completions {
		return nil
	}
	project = strings.TrimSpace(project)
	job = strings.TrimSpace(job)
	data := payload{
		title:   "DFStudio - Clip Complete",
		message: fmt.Sprintf("Completed %s on %s", job, project),
		tags:    []string{"dfstudio", "clip", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStitchReady(ctx context.Context, project, url string) error {
	if !n.completions {
		return nil
	}
	project = strings.TrimSpace(project)
	message := fmt.Sprintf("Final video ready for %s", project)
	if url = strings.TrimSpace(url); url != "" {
		message = fmt.Sprintf("%s\n%s", message, url)
	}
	data := payload{
		title:    "DFStudio - Stitch Ready",
		message:  message,
		tags:     []string{"dfstudio", "stitch", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "DFStudio - Error",
		message:  builder.String(),
		tags:     []string{"dfstudio", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "DFStudio - Test",
		message:  "Notification system test",
		tags:     []string{"dfstudio", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

// headers maps a payload onto the ntfy publishing headers. Priority
// "default" is ntfy's own default and is omitted.
func (p payload) headers() map[string]string {
	h := map[string]string{
		"User-Agent":   userAgent,
		"Content-Type": "text/plain; charset=utf-8",
	}
	if p.title != "" {
		h["Title"] = p.title
	}
	if len(p.tags) > 0 {
		h["Tags"] = strings.Join(p.tags, ",")
	}
	if p.priority != "" && p.priority != "default" {
		h["Priority"] = p.priority
	}
	return h
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	for key, value := range data.headers() {
		req.Header.Set(key, value)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyQueueStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyClipCompleted(context.Context, string, string) error {
	return nil
}
func (noopService) NotifyStitchReady(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
