package main

import (
	"context"
	"fmt"
	"io"

	"github.com/phrazzld/studyace/internal/events"
)

// consoleNotifier prints reward events as they happen during play.
type consoleNotifier struct {
	w io.Writer
}

var _ events.EventHandler = (*consoleNotifier)(nil)

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

// HandleEvent implements events.EventHandler. Events without a console
// message are ignored.
func (n *consoleNotifier) HandleEvent(_ context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeBadgeEarned:
		var p events.BadgeEarned
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		fmt.Fprintln(n.w, rewardStyle.Render("New badge: "+p.Badge))
	case events.TypeChallengeCompleted:
		var p events.ChallengeCompleted
		if err := event.UnmarshalPayload(&p); err != nil {
			return err
		}
		fmt.Fprintln(n.w, rewardStyle.Render(fmt.Sprintf("Daily challenge complete! +%d points", p.Bonus)))
	}
	return nil
}
