package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/jewelry-admin/internal/app"
	"github.com/angelmondragon/jewelry-admin/pkg/config"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
)

const serviceName = "cropctl"

// bootstrap builds the application graph for commands that touch the cache or the shop
// backend. Tests replace it.
var bootstrap = func(ctx context.Context) (*app.App, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
		Output:      os.Stderr,
	})
	return app.New(ctx, cfg, logg, app.Options{})
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Operator tools for the jewelry admin console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCropCmd(), newCacheCmd(), newAuthCmd())
	return root
}

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		root.PrintErrln("error:", err)
		os.Exit(1)
	}
}

// withApp runs fn against a freshly wired application and releases it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) (err error) {
	a, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(a)
}
