package admincli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/flagx"
	"github.com/dmitrijs2005/portfolio/internal/server/models"
)

const (
	minPasswordLen       = 6
	generatedPasswordLen = 12
)

// ErrUsage is returned for an unknown command or malformed flags.
var ErrUsage = errors.New("usage: admin <create-admin|passwd|seed-demo> [flags]")

type accountAdmin interface {
	CreateAdmin(ctx context.Context, email, password, name string) (*models.Account, error)
	ChangePassword(ctx context.Context, email, password string) error
}

type demoSeeder interface {
	SeedDemo(ctx context.Context) (int, error)
}

type App struct {
	accounts accountAdmin
	projects demoSeeder
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(accounts accountAdmin, projects demoSeeder, in io.Reader, out io.Writer) *App {
	return &App{accounts: accounts, projects: projects, reader: bufio.NewReader(in), out: out}
}

// Command returns the subcommand name, or "" when args is empty.
func Command(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// NeedsDatabase reports whether args name a command that talks to the
// database. Help and unknown commands are handled without a connection.
func NeedsDatabase(args []string) bool {
	switch Command(args) {
	case "create-admin", "passwd", "seed-demo":
		return true
	}
	return false
}

// Run executes the subcommand named by args[0]. Flags the subcommand does not
// know about are ignored so config flags can share the argument list.
func (a *App) Run(ctx context.Context, args []string) error {
	switch Command(args) {
	case "create-admin":
		return a.createAdmin(ctx, args[1:])
	case "passwd":
		return a.passwd(ctx, args[1:])
	case "seed-demo":
		return a.seedDemo(ctx)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, ErrUsage.Error())
		return nil
	default:
		return ErrUsage
	}
}

type accountFlags struct {
	email    string
	name     string
	generate bool
}

func parseAccountFlags(args []string) (*accountFlags, error) {
	f := &accountFlags{}
	fs := flag.NewFlagSet("account", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.email, "email", "", "account email")
	fs.StringVar(&f.name, "name", "", "display name")
	fs.BoolVar(&f.generate, "generate", false, "generate a random password")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "-name", "-generate"})); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return f, nil
}

func (a *App) createAdmin(ctx context.Context, args []string) error {
	f, err := parseAccountFlags(args)
	if err != nil {
		return err
	}
	if f.email == "" {
		if f.email, err = GetSimpleText(a.reader, "Admin email", a.out); err != nil {
			return err
		}
	}

	password, err := a.password(f.generate)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	acc, err := a.accounts.CreateAdmin(ctx, f.email, string(password), f.name)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Admin account %s created (id %s)\n", acc.Email, acc.ID)
	if f.generate {
		fmt.Fprintf(a.out, "Generated password: %s\n", password)
	}
	return nil
}

func (a *App) passwd(ctx context.Context, args []string) error {
	f, err := parseAccountFlags(args)
	if err != nil {
		return err
	}
	if f.email == "" {
		if f.email, err = GetSimpleText(a.reader, "Account email", a.out); err != nil {
			return err
		}
	}

	password, err := a.password(f.generate)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.accounts.ChangePassword(ctx, f.email, string(password)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("no account with email %s", f.email)
		}
		return err
	}

	fmt.Fprintln(a.out, "Password updated")
	if f.generate {
		fmt.Fprintf(a.out, "Generated password: %s\n", password)
	}
	return nil
}

func (a *App) seedDemo(ctx context.Context) error {
	n, err := a.projects.SeedDemo(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(a.out, "Projects already present, nothing seeded")
		return nil
	}
	fmt.Fprintf(a.out, "Seeded %d demo projects\n", n)
	return nil
}

// password either generates a random password or prompts twice for one.
func (a *App) password(generate bool) ([]byte, error) {
	if generate {
		s, err := common.MakeRandHexString(generatedPasswordLen / 2)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	pw, err := GetPassword(a.out, "Password: ")
	if err != nil {
		return nil, err
	}
	confirm, err := GetPassword(a.out, "Repeat password: ")
	if err != nil {
		common.WipeByteArray(pw)
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		common.WipeByteArray(pw)
		return nil, errors.New("passwords do not match")
	}
	if len(pw) < minPasswordLen {
		common.WipeByteArray(pw)
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return pw, nil
}
