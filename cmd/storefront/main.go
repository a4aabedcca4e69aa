// Command storefront is the terminal storefront: it keeps the guest cart and
// favorites on this device and merges them into the account on sign-in.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"kinderstep-backend/config"
	"kinderstep-backend/internal/client/credential"
	"kinderstep-backend/internal/client/gateway"
	"kinderstep-backend/internal/client/gueststore"
	"kinderstep-backend/internal/client/reconcile"
	"kinderstep-backend/internal/client/session"
	"kinderstep-backend/internal/client/storefront"
	"kinderstep-backend/internal/client/view"
	"kinderstep-backend/internal/domain"
	"kinderstep-backend/internal/schema"
	"kinderstep-backend/pkg/logger"

	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.ClientConfig
	store   *gueststore.FileStore
	guest   *gueststore.GuestState
	creds   *credential.Resolver
	api     *gateway.Client
	shop    *storefront.Service
	session *session.Service
}

var (
	// Global flags
	apiURL    string
	stateFile string
	verbose   bool
	assumeYes bool

	a *app
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Kinderstep children's footwear store",
	Long: `Browse the catalog, keep a cart and favorites, and place orders.

Without signing in, the cart and favorites live on this device. After
"storefront login" they are merged into your account.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadClientConfig()
		if apiURL != "" {
			cfg.APIBaseURL = apiURL
		}
		if stateFile != "" {
			cfg.StateFile = stateFile
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		logger.InitWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)

		built, err := newApp(cfg)
		if err != nil {
			return err
		}
		a = built
		return nil
	},
}

func newApp(cfg *config.ClientConfig) (*app, error) {
	store, err := gueststore.OpenFileStore(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("open device state: %w", err)
	}
	guest := gueststore.New(store, nil)
	creds := credential.NewResolver(store)
	api := gateway.New(cfg.APIBaseURL, cfg.RequestTimeout, creds)
	merger := reconcile.NewService(api, guest, reconcile.Options{
		AttemptTimeout: cfg.SyncAttemptTimeout,
		MaxTries:       cfg.SyncMaxTries,
		MaxElapsed:     cfg.SyncMaxElapsed,
	})

	return &app{
		cfg:     cfg,
		store:   store,
		guest:   guest,
		creds:   creds,
		api:     api,
		shop:    storefront.NewService(api, creds, guest),
		session: session.NewService(api, creds, merger, guest.Bus()),
	}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (or set KINDERSTEP_API_URL)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "", "Device state file (or set KINDERSTEP_STATE_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before destructive actions")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(favCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, view.Error(describe(err)))
		os.Exit(1)
	}
}

// describe turns an error into a message for the user.
func describe(err error) string {
	var (
		gerr *gateway.Error
		verr *schema.ValidationError
		rerr *reconcile.Error
	)
	switch {
	case errors.As(err, &rerr):
		return "could not move your device cart/favorites into the account, they are kept on this device: " + rerr.Error()
	case errors.As(err, &gerr):
		if gerr.Kind == gateway.KindUnauthorized && gerr.Status != 403 {
			return gerr.Message + " (run: storefront login)"
		}
		return gerr.Message
	case errors.As(err, &verr):
		parts := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			parts[i] = f.String()
		}
		return strings.Join(parts, "; ")
	case errors.Is(err, domain.ErrUnauthorized):
		return "please sign in first (run: storefront login)"
	case errors.Is(err, gueststore.ErrOutOfStock):
		return "this size is out of stock"
	}
	return err.Error()
}

// confirm asks a yes/no question unless --yes was given.
func confirm(cmd *cobra.Command, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func printBadges(cmd *cobra.Command) {
	b, err := a.shop.Badges(cmd.Context())
	if err != nil {
		logger.Debug().Err(err).Msg("Badges unavailable")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), view.Badges(b))
}
