package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"blogz/internal/auth"
	"blogz/internal/db"
	"blogz/internal/models"
)

// newUser carries the same rules the registration form enforces.
type newUser struct {
	Username string `validate:"required,min=6,max=35"`
	Email    string `validate:"required,email,min=6,max=35"`
	Password string `validate:"required,min=8,max=35"`
}

func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(userAddCmd(), userListCmd())
	return cmd
}

func userAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")

			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			nu := newUser{Username: strings.TrimSpace(username), Email: strings.ToLower(strings.TrimSpace(email)), Password: password}
			if err := validator.New().Struct(nu); err != nil {
				return fmt.Errorf("invalid user: %w", err)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dbc, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer dbc.Close()
			if err := db.Migrate(cmd.Context(), dbc, cfg.DBDriver); err != nil {
				return err
			}

			hash, err := auth.NewHasher(cfg.BcryptCost).Hash(nu.Password)
			if err != nil {
				return err
			}
			u := &models.User{Username: nu.Username, Email: nu.Email, PasswordHash: hash}
			if err := db.NewStore(dbc).CreateUser(cmd.Context(), u); errors.Is(err, db.ErrDuplicate) {
				return fmt.Errorf("user %q or email %q already exists", nu.Username, nu.Email)
			} else if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", u.Username, u.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "", "username (6-35 characters)")
	cmd.Flags().String("email", "", "email address")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	addDBFlags(cmd)
	return cmd
}

func userListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dbc, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer dbc.Close()

			users, err := db.NewStore(dbc).ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tPOSTS")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", u.ID, u.Username, u.Posts)
			}
			return tw.Flush()
		},
	}
	addDBFlags(cmd)
	return cmd
}

// readPassword prompts twice on a terminal. Piped input supplies a single
// line instead.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		fmt.Fprint(prompt, "Confirm password: ")
		confirm, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		if string(pw) != string(confirm) {
			return "", errors.New("passwords do not match")
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
