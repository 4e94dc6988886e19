package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/Prakkie91/jobo-go/jobo"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records build information injected by the linker
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "jobo %s (built %s, %s/%s, SDK %s)\n",
				version, buildTime, runtime.GOOS, runtime.GOARCH, jobo.Version)
			return nil
		},
	}
}

func newUpdateCmd(a *app) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update jobo to the latest release",
		Long: `Check GitHub releases for a newer version of jobo and replace the running
binary with it. Release checksums are verified before installing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := semver.ParseTolerant(version)
			if err != nil {
				return fmt.Errorf("cannot update a development build (version %q)", version)
			}

			updater, err := selfupdate.NewUpdater(selfupdate.Config{
				Validator: &selfupdate.ChecksumValidator{UniqueFilename: "checksums.txt"},
			})
			if err != nil {
				return fmt.Errorf("failed to create updater: %w", err)
			}

			ctx := cmd.Context()
			repo := a.cfg.Update.Repository
			release, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
			if err != nil {
				return fmt.Errorf("failed to check for updates: %w", err)
			}
			if !found {
				return fmt.Errorf("no release found for %s/%s in %s", runtime.GOOS, runtime.GOARCH, repo)
			}

			latest, err := semver.ParseTolerant(release.Version())
			if err != nil {
				return fmt.Errorf("release has invalid version %q: %w", release.Version(), err)
			}

			out := cmd.OutOrStdout()
			if latest.LTE(current) {
				fmt.Fprintf(out, "jobo %s is up to date\n", current)
				return nil
			}
			if checkOnly {
				fmt.Fprintf(out, "jobo %s is available (installed: %s)\n", latest, current)
				return nil
			}

			exe, err := selfupdate.ExecutablePath()
			if err != nil {
				return fmt.Errorf("could not locate executable path: %w", err)
			}

			a.logger.Info().Str("from", current.String()).Str("to", latest.String()).Str("path", exe).Msg("Updating jobo")

			if err := updater.UpdateTo(ctx, release, exe); err != nil {
				return fmt.Errorf("failed to update binary: %w", err)
			}

			fmt.Fprintf(out, "Updated jobo %s -> %s\n", current, latest)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
	return cmd
}
