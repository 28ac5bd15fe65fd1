package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teemow/gcal-mcp/internal/calendar"
	"github.com/teemow/gcal-mcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access for an account",
		Long: `Authorize Google Calendar access and cache the token for an account.

Prints the authorization URL, then reads the code Google displays after
access is granted. Pass --code to skip the prompt.

Requires GOOGLE_CALENDAR_CLIENT_ID and GOOGLE_CALENDAR_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), account, code)
		},
	}

	cmd.Flags().StringVar(&account, "account", calendar.DefaultAccount, "Account name (letters, digits, - and _)")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code (prompted for when empty)")

	return cmd
}

func runAuth(ctx context.Context, in io.Reader, out io.Writer, account, code string) error {
	if code == "" {
		authURL, err := google.GetAuthURLForAccount(account)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Visit this URL to authorize account %q:\n\n%s\n\n", account, authURL)
		fmt.Fprint(out, "Enter the authorization code: ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		code = strings.TrimSpace(line)
		if code == "" {
			return errors.New("no authorization code entered")
		}
	}

	if err := google.SaveTokenForAccount(ctx, account, code); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Token saved for account %q\n", color.New(color.FgGreen).Sprint("✓"), account)
	return nil
}
