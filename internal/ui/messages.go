package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adriangreen/todo-tui/internal/config"
	"github.com/adriangreen/todo-tui/internal/feed"
)

// Loader fetches the task list. *feed.Client satisfies it.
type Loader interface {
	Load(ctx context.Context) feed.Result
}

// FeedLoadedMsg carries the outcome of a load. Seq identifies the request so
// results of superseded loads are dropped.
type FeedLoadedMsg struct {
	Seq    int
	Result feed.Result
}

// ConfigReloadedMsg is sent when config files have been reloaded from disk
type ConfigReloadedMsg struct{}

// toastTickMsg drives notification expiry.
type toastTickMsg time.Time

// LoadFeedCmd runs the loader off the event loop.
func LoadFeedCmd(ctx context.Context, loader Loader, seq int) tea.Cmd {
	return func() tea.Msg {
		return FeedLoadedMsg{Seq: seq, Result: loader.Load(ctx)}
	}
}

// WaitForConfigReload returns a command that waits for config to be reloaded
// and sends a ConfigReloadedMsg when that happens
func WaitForConfigReload(manager *config.ConfigManager) tea.Cmd {
	if manager == nil {
		return nil
	}
	return func() tea.Msg {
		<-manager.ReloadEvents()
		return ConfigReloadedMsg{}
	}
}

func toastTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}
