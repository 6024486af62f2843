package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/client"
	"github.com/anonto42/sparkmatch/backend/internal/poller"
)

var watchCmd = &cobra.Command{
	Use:   "watch [other-user-id]",
	Short: "Poll a conversation and send what you type",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	otherID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || otherID == 0 {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	store, s, err := loadSession()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := &transcript{w: cmd.OutOrStdout(), me: s.UserID}
	loggedOut := make(chan struct{})
	p := poller.New(ctx, client.NewAPIClient(baseURL, s, nil), poller.Options{
		Store:    store,
		OnLogout: func() { close(loggedOut) },
		OnChange: out.render,
		Log:      log,
	})
	defer p.Stop()

	log.Debug("watching conversation", zap.Uint64("other_user_id", otherID))
	p.Select(uint(otherID))
	go readLines(ctx, cmd.InOrStdin(), p.Send)

	select {
	case <-ctx.Done():
		return nil
	case <-loggedOut:
		return fmt.Errorf("session expired, run `chatwatch login` again")
	}
}

func readLines(ctx context.Context, r io.Reader, send func(string)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		send(scanner.Text())
	}
}

// transcript prints messages the terminal has not shown yet and each new inline error.
type transcript struct {
	w  io.Writer
	me uint

	mu      sync.Mutex
	shown   int
	lastErr string
}

func (t *transcript) render(s poller.State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	messages := s.Current()
	if len(messages) < t.shown {
		// history shrank on the server; print it again from the top
		t.shown = 0
	}
	for _, m := range messages[t.shown:] {
		who := "them"
		if m.SenderID == t.me {
			who = "me"
		}
		fmt.Fprintf(t.w, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), who, m.Content)
	}
	t.shown = len(messages)

	errText := ""
	if s.Err != nil {
		errText = s.Err.Error()
	}
	if errText != "" && errText != t.lastErr {
		fmt.Fprintf(t.w, "! %s\n", errText)
	}
	t.lastErr = errText
}
