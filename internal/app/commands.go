package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/marquee/internal/playback"
)

const tickInterval = 250 * time.Millisecond

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// WaitEvents returns a command that blocks until the engine signals queued
// events. The UI drains them on EventsMsg and waits again.
func WaitEvents(service playback.Service) tea.Cmd {
	return func() tea.Msg {
		<-service.Pending()
		return EventsMsg{}
	}
}

// LoadCmd opens uri at start. The engine answers once the backend is
// created and the media opened, never waiting for playback itself.
func LoadCmd(ctx context.Context, service playback.Service, uri string, start time.Duration) tea.Cmd {
	return func() tea.Msg {
		return LoadedMsg{Err: service.Load(ctx, uri, start)}
	}
}
