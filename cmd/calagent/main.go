package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/calagent/internal/profile"
	"github.com/hrygo/calagent/server"
	"github.com/hrygo/calagent/store"
	"github.com/hrygo/calagent/store/db"
)

const (
	greetingBanner = `calagent - conversational calendar assistant`
	version        = "0.1.0"
)

var (
	rootCmd = &cobra.Command{
		Use:   "calagent",
		Short: "A conversational calendar assistant",
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{}
			instanceProfile.FromEnv()
			instanceProfile.Mode = viper.GetString("mode")
			instanceProfile.Addr = viper.GetString("addr")
			instanceProfile.Port = viper.GetInt("port")
			instanceProfile.Data = viper.GetString("data")
			instanceProfile.Driver = viper.GetString("driver")
			instanceProfile.DSN = viper.GetString("dsn")
			instanceProfile.Timezone = viper.GetString("timezone")
			instanceProfile.Version = version
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid profile", "error", err)
				return
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				slog.Error("failed to create db driver", "error", err)
				return
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				slog.Error("failed to migrate database", "error", err)
				return
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				slog.Error("failed to create server", "error", err)
				return
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				sig := <-sigChan
				slog.Info("received signal, shutting down", "signal", sig.String())
				s.Shutdown(ctx)
				cancel()
			}()

			printGreetings(instanceProfile)

			// Start blocks until Shutdown completes.
			if err := s.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to start server", "error", err)
			}
		},
	}
)

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8081)
	viper.SetDefault("timezone", "UTC")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("timezone", "UTC", "default IANA timezone")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("calagent")
	viper.AutomaticEnv()
}

func printGreetings(p *profile.Profile) {
	fmt.Println(greetingBanner)
	fmt.Printf("version %s, mode %s, port %d\n", p.Version, p.Mode, p.Port)
	fmt.Println("---")
	fmt.Println("see you around!")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("failed to run command", "error", err)
		os.Exit(1)
	}
}
