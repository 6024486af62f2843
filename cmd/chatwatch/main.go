package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/session"
	"github.com/anonto42/sparkmatch/backend/pkg/config"
	"github.com/anonto42/sparkmatch/backend/pkg/logger"
)

var (
	// Global flags
	baseURL     string
	sessionPath string
	verbose     bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chatwatch",
	Short: "Follow a sparkmatch conversation from the terminal",
	Long: `chatwatch polls a conversation every few seconds and prints new messages.
Lines typed on stdin are sent to the other user.

Store a credential first:
  chatwatch login --user-id 12 --token <bearer>`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if baseURL == "" {
			baseURL = cfg.APIBaseURL
		}
		env := "production"
		if verbose {
			env = "development"
		}
		log = logger.Must(env)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "api", "", "API base URL (or set API_BASE_URL env)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", "", "Session file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	var userID uint
	var token string
	loginCmd.Flags().UintVar(&userID, "user-id", 0, "Your user id (required)")
	loginCmd.Flags().StringVar(&token, "token", "", "Bearer token (or set API_TOKEN env)")
	_ = loginCmd.MarkFlagRequired("user-id")
	loginCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runLogin(cmd, userID, token)
	}

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(notificationsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func sessionStore() (session.Store, error) {
	if sessionPath != "" {
		return session.NewFileStore(sessionPath), nil
	}
	return session.DefaultFileStore()
}
