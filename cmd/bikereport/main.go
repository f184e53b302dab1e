package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bikereport/internal/app"
	"bikereport/internal/config"
	apperrors "bikereport/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		appErr := apperrors.Classify(err)
		fmt.Fprintf(os.Stderr, "Error: %s\n  %v\n", appErr.Message, err)
		stop()
		os.Exit(appErr.Type.ExitCode())
	}
}

// newRootCommand builds the command tree reading input from in
func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "bikereport",
		Short:         "Generate a PDF report from public bike trip data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().StringVar(&configFile, "config", "", "configuration file (default config.yaml or configs/config.yaml)")

	console := newConsole(in, out)
	root.AddCommand(
		newRunCommand(&configFile, console),
		newUsersCommand(&configFile, console),
		newVersionCommand(),
	)
	return root
}

func newRunCommand(configFile *string, console *console) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Log in, download the dataset and write the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), *configFile, console.out, func(ctx context.Context, a *app.Application) error {
				session, err := a.Login(ctx, console)
				if err != nil {
					return err
				}
				fmt.Fprintf(console.out, "Welcome, %s.\n", session.Username)

				fmt.Fprint(console.out, "Generating report ")
				state, err := a.GenerateReport(ctx, session, input)
				fmt.Fprintln(console.out)
				if err != nil {
					return err
				}

				fmt.Fprintf(console.out, "Report written to %s\n", state.ReportPath)
				for _, f := range state.Exported {
					fmt.Fprintf(console.out, "Table written to %s\n", f)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "use this dataset workbook instead of downloading it")
	return cmd
}

func newUsersCommand(configFile *string, console *console) *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Manage report users",
	}

	users.AddCommand(&cobra.Command{
		Use:   "add <username>",
		Short: "Add a user to the credential store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := console.password("Password: ")
			if err != nil {
				return err
			}
			return withApplication(cmd.Context(), *configFile, nil, func(ctx context.Context, a *app.Application) error {
				if err := a.AddUser(ctx, args[0], password); err != nil {
					return err
				}
				fmt.Fprintf(console.out, "User %s added.\n", args[0])
				return nil
			})
		},
	})
	return users
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (build %s, %s)\n",
				config.AppName, config.AppVersion, app.BuildID, app.BuildTime)
		},
	}
}

// withApplication loads the configuration, starts the application, runs fn
// and shuts the application down again
func withApplication(ctx context.Context, configFile string, spinner io.Writer, fn func(context.Context, *app.Application) error) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return apperrors.NewConfigError("Configuration is invalid", err)
	}

	a, err := app.NewApplication(ctx, cfg, app.WithConsole(spinner))
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)
	// ctx may already be cancelled by a signal
	stopErr := a.Stop(context.WithoutCancel(ctx))
	return errors.Join(runErr, stopErr)
}

// console prompts the operator. Passwords are read without echo when in is
// a terminal.
type console struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.fd = int(f.Fd())
		c.isTerm = true
	}
	return c
}

// Prompt implements auth.Prompter
func (c *console) Prompt(ctx context.Context, attempt int) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	if attempt > 1 {
		fmt.Fprintln(c.out, "Invalid username or password, please try again.")
	}

	fmt.Fprint(c.out, "Username: ")
	username, err := c.line()
	if err != nil {
		return "", "", err
	}

	password, err := c.password("Password: ")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func (c *console) password(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.isTerm {
		return c.line()
	}
	b, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func (c *console) line() (string, error) {
	s, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}
