package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anonto42/sparkmatch/backend/internal/client"
	"github.com/anonto42/sparkmatch/backend/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the credential used by the other commands",
	Args:  cobra.NoArgs,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credential",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessionStore()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show your unread count and latest notifications",
	Args:  cobra.NoArgs,
	RunE:  showNotifications,
}

func runLogin(cmd *cobra.Command, userID uint, token string) error {
	if token == "" {
		token = cfg.APIToken
	}
	s := session.Session{UserID: userID, Token: token}
	if !s.Authenticated() {
		return errors.New("both --user-id and a token are required")
	}
	store, err := sessionStore()
	if err != nil {
		return err
	}
	if err := store.Save(s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as user %d.\n", userID)
	return nil
}

// loadSession returns the stored credential, asking the user to log in when there is none.
func loadSession() (session.Store, session.Session, error) {
	store, err := sessionStore()
	if err != nil {
		return nil, session.Session{}, err
	}
	s, err := store.Load()
	if errors.Is(err, session.ErrNoSession) {
		return nil, session.Session{}, errors.New("not logged in, run `chatwatch login` first")
	}
	if err != nil {
		return nil, session.Session{}, err
	}
	return store, s, nil
}

func showNotifications(cmd *cobra.Command, args []string) error {
	_, s, err := loadSession()
	if err != nil {
		return err
	}
	api := client.NewAPIClient(baseURL, s, nil)
	ctx := cmd.Context()

	count, err := api.UnreadCount(ctx)
	if err != nil {
		return err
	}
	page, err := api.GetNotifications(ctx, 1, 10)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d unread\n", count)
	for _, n := range page.Items {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Fprintf(out, "%s %s  %s\n", mark, n.CreatedAt.Local().Format("Jan 02 15:04"), n.Content)
	}
	return nil
}
