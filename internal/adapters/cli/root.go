// Package cli is the terminal adapter: the cobra command tree, the interactive
// shell and its prompter, and table rendering.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/address-book/internal/app"
	"github.com/jsamuelsen/address-book/internal/platform/logging"
)

// BuildInfo contains build-time information about the binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
}

// NewBuildInfo creates a BuildInfo with the Go version automatically set.
func NewBuildInfo(version, commit, buildTime string) BuildInfo {
	return BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
		GoVersion: runtime.Version(),
	}
}

// Options are the persistent flags shared by every command.
type Options struct {
	// Profile selects configs/{profile}.yaml.
	Profile string

	// Book overrides the configured archive path.
	Book string

	// LogLevel overrides the configured log level.
	LogLevel string
}

// Runtime is everything a command needs once the program is wired.
type Runtime struct {
	Service        *app.ContactService
	PageSize       int
	BirthdayWindow int
	Logger         *slog.Logger

	// Close releases the archive and log file. It may be nil.
	Close func() error
}

// Bootstrap wires a Runtime from the flags.
type Bootstrap func(ctx context.Context, opts Options) (*Runtime, error)

const skipBootstrap = "skip-bootstrap"

type root struct {
	info BuildInfo
	boot Bootstrap
	opts Options
	rt   *Runtime
}

// NewRootCmd builds the addressbook command tree. Without a subcommand the
// interactive shell starts.
func NewRootCmd(info BuildInfo, boot Bootstrap) *cobra.Command {
	r := &root{info: info, boot: boot}

	cmd := &cobra.Command{
		Use:   "addressbook",
		Short: "Personal address book",
		Long: `Keep contacts with phones, email and birthday in a local archive.

Run without a command to start the interactive shell.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: r.setup,
		RunE:              r.run(r.runShell),
	}

	cmd.CompletionOptions.DisableDefaultCmd = true

	flags := cmd.PersistentFlags()
	flags.StringVarP(&r.opts.Profile, "profile", "p", "", "configuration profile (configs/{profile}.yaml)")
	flags.StringVarP(&r.opts.Book, "book", "b", "", "address book archive path")
	flags.StringVar(&r.opts.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	cmd.AddCommand(
		r.shellCmd(),
		r.addCmd(),
		r.listCmd(),
		r.findCmd(),
		r.birthdaysCmd(),
		r.deleteCmd(),
		r.renameCmd(),
		r.versionCmd(),
	)

	return cmd
}

// setup runs the bootstrap and tags the command context logger.
func (r *root) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipBootstrap] != "" || cmd.Name() == "help" {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := r.boot(ctx, r.opts)
	if err != nil {
		return fmt.Errorf("starting address book: %w", err)
	}

	if rt == nil || rt.Service == nil {
		return errors.New("starting address book: no contact service")
	}

	r.rt = rt

	if rt.Logger != nil {
		ctx = logging.WithContext(ctx, rt.Logger)
	}

	cmd.SetContext(logging.WithCommand(ctx, cmd.Name()))

	return nil
}

// run wraps a command body so the runtime is closed however it ends.
func (r *root) run(fn func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if r.rt != nil && r.rt.Close != nil {
				err = errors.Join(err, r.rt.Close())
			}
		}()

		return fn(cmd, args)
	}
}
