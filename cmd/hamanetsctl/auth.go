package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"hamanets/internal/config"
	gsheet "hamanets/internal/sheets/google"
)

func sheetsAuthCmd(_ *rootOptions) *cobra.Command {
	var (
		clientFile string
		tokenFile  string
		port       int
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize the Google Sheets mirror with an OAuth client",
		Long: `Runs the OAuth consent flow for a desktop OAuth client and saves the
resulting token. Point GOOGLE_OAUTH_TOKEN_FILE at the token so the worker
can mirror the ledger without a service account.

Add http://localhost:<port>/callback to the client's redirect URIs first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if clientFile == "" {
				clientFile = cfg.GoogleOAuthClientFile
			}
			if tokenFile == "" {
				tokenFile = cfg.GoogleOAuthTokenFile
			}
			if tokenFile == "" {
				tokenFile = "token.json"
			}

			b, err := clientJSON(clientFile)
			if err != nil {
				return err
			}
			oc, err := goauth.ConfigFromJSON(b, sheets.SpreadsheetsScope)
			if err != nil {
				return fmt.Errorf("oauth config: %w", err)
			}
			oc.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			tok, err := authorize(ctx, oc, port, func(url string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n", url)
			})
			if err != nil {
				return err
			}
			if err := gsheet.WriteToken(tokenFile, tok); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSuccess("Saved token to "+tokenFile))
			return nil
		},
	}
	cmd.Flags().StringVar(&clientFile, "client-file", "", "OAuth client JSON (default GOOGLE_OAUTH_CLIENT_FILE)")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "where to save the token (default GOOGLE_OAUTH_TOKEN_FILE or token.json)")
	cmd.Flags().IntVar(&port, "port", 8085, "local port for the OAuth redirect")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for consent")
	return cmd
}

func clientJSON(path string) ([]byte, error) {
	if raw := os.Getenv("GOOGLE_OAUTH_CLIENT_JSON"); raw != "" {
		return []byte(raw), nil
	}
	if path == "" {
		return nil, errors.New("set --client-file, GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client file: %w", err)
	}
	return b, nil
}

// authorize serves the redirect on localhost, waits for the code and
// exchanges it for a token.
func authorize(ctx context.Context, oc *oauth2.Config, port int, show func(url string)) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res result
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("oauth error: %s", q.Get("error"))
		case q.Get("state") != state:
			res.err = errors.New("oauth state mismatch")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})

	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen for oauth redirect: %w", err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	show(oc.AuthCodeURL(state, oauth2.AccessTypeOffline))

	select {
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := oc.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("token exchange: %w", err)
		}
		return tok, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
