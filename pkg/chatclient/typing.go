package chatclient

import (
	"context"
	"sync"
	"time"
)

// typingSilence is how long after the last keystroke the notifier waits
// before emitting typing_stop.
const typingSilence = 1000 * time.Millisecond

// TypingNotifier turns a stream of keystrokes into at most one typing_start
// and one typing_stop. Touch on every keystroke; the stop fires after the
// caller goes quiet, or immediately on Stop (sending a message, leaving the
// screen).
type TypingNotifier struct {
	session        *Session
	conversationID int64
	silence        time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	active bool
}

func NewTypingNotifier(session *Session, conversationID int64) *TypingNotifier {
	return &TypingNotifier{
		session:        session,
		conversationID: conversationID,
		silence:        typingSilence,
	}
}

func (n *TypingNotifier) Touch(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.active {
		n.active = true
		if err := n.session.sendTyping(ctx, n.conversationID, true); err != nil {
			n.session.reportError(err)
		}
	}

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.silence, func() {
		n.expire(ctx)
	})
}

// Stop emits typing_stop immediately if a start was sent. Safe to call more
// than once.
func (n *TypingNotifier) Stop(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked(ctx)
}

func (n *TypingNotifier) expire(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked(ctx)
}

func (n *TypingNotifier) stopLocked(ctx context.Context) {
	if !n.active {
		return
	}
	n.active = false
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if err := n.session.sendTyping(ctx, n.conversationID, false); err != nil {
		n.session.reportError(err)
	}
}
