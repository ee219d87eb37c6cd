package await

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"
)

// DialogHandler accepts native browser dialogs (confirm/alert) as they open
// and records their messages so scenarios can assert on them. Dialog
// cardinality legitimately varies across flows, so the handler models
// "drain zero or more" rather than an exact count.
type DialogHandler struct {
	ctx      context.Context
	log      arbor.ILogger
	messages chan string
}

// NewDialogHandler registers a dialog listener on the browser context.
// Every dialog is accepted; its message is buffered for later assertion.
// An open dialog blocks the page until it is handled, so acceptance cannot
// wait for the expectation check: the message is recorded at acceptance
// time and Accept asserts on the recording.
func NewDialogHandler(ctx context.Context, log arbor.ILogger) *DialogHandler {
	h := &DialogHandler{
		ctx:      ctx,
		log:      log,
		messages: make(chan string, 8),
	}
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if dialog, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			msg := dialog.Message
			go func() {
				if err := chromedp.Run(ctx, page.HandleJavaScriptDialog(true)); err != nil {
					h.log.Warn().Err(err).Msg("failed to accept browser dialog")
					return
				}
				select {
				case h.messages <- msg:
				default:
					h.log.Warn().Str("message", msg).Msg("dialog message buffer full, dropping")
				}
			}()
		}
	})
	return h
}

// Accept waits for the next dialog to be accepted and returns its message.
// When expect is non-empty the message must contain it.
func (h *DialogHandler) Accept(expect string, timeout time.Duration) (string, error) {
	select {
	case msg := <-h.messages:
		if expect != "" && !strings.Contains(msg, expect) {
			return msg, fmt.Errorf("dialog message %q does not contain %q", msg, expect)
		}
		h.log.Debug().Str("message", msg).Msg("accepted browser dialog")
		return msg, nil
	case <-time.After(timeout):
		return "", &TimeoutError{Description: "browser dialog", Timeout: timeout}
	case <-h.ctx.Done():
		return "", fmt.Errorf("dialog wait aborted: %w", h.ctx.Err())
	}
}

// Drain accepts any dialogs that arrive within the window and returns their
// messages. A flow whose optional success alert never shows drains empty;
// that is logged, not failed. Messages already buffered are always returned,
// even with a zero window.
func (h *DialogHandler) Drain(window time.Duration) []string {
	var msgs []string
	// Empty the buffer first; a zero-window select would race the expired
	// timer against a ready channel and could leave messages behind.
	for {
		select {
		case msg := <-h.messages:
			msgs = append(msgs, msg)
			continue
		default:
		}
		break
	}
	if window <= 0 {
		return msgs
	}
	deadline := time.After(window)
	for {
		select {
		case msg := <-h.messages:
			msgs = append(msgs, msg)
		case <-deadline:
			if len(msgs) == 0 {
				h.log.Debug().Msg("no further dialogs appeared in drain window")
			}
			return msgs
		case <-h.ctx.Done():
			return msgs
		}
	}
}
