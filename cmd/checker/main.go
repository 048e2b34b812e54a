package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mkrupp/filedrop-checker/internal/domain"
	"github.com/mkrupp/filedrop-checker/internal/infra/config"
	context_ "github.com/mkrupp/filedrop-checker/internal/infra/context"
	"github.com/mkrupp/filedrop-checker/internal/infra/logging"
	flagrepo "github.com/mkrupp/filedrop-checker/internal/repo/flag"
	"github.com/mkrupp/filedrop-checker/internal/svc/checkersvc"
	"github.com/mkrupp/filedrop-checker/internal/svc/checkersvc/targetclient"
)

const (
	appName = "filedrop"
	svcName = "checker"
)

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig                `envPrefix:"LOG_"`
	Checker checkersvc.CheckerConfig            `envPrefix:"CHECKER_"`
	HTTP    targetclient.HTTPClientConfig       `envPrefix:"HTTP_"`
	Flags   flagrepo.SQLiteFlagRepositoryConfig `envPrefix:"FLAGS_"`
}

var (
	cfg  Config
	tick int

	exitCode int
)

var rootCmd = &cobra.Command{
	Use:          "checker",
	Short:        "Black-box verifier for the filedrop service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		configPrefix := strings.ToUpper(strings.Join([]string{appName, svcName}, "_"))
		loggerName := strings.ToLower(strings.Join([]string{appName, svcName}, "."))

		if err := config.Parse(ctx, &cfg, configPrefix); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}

		logging.Configure(ctx, cfg.Log, loggerName)

		ctx = context_.WithRunID(ctx, uuid.NewString())
		ctx = context_.WithTick(ctx, tick)
		cmd.SetContext(ctx)

		return nil
	},
}

var placeCmd = &cobra.Command{
	Use:   "place <flag>",
	Short: "Deposit the tick's flag with the target service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerification(cmd.Context(), func(ctx context.Context, svc *checkersvc.CheckerService) domain.Result {
			return svc.PlaceFlag(ctx, tick, args[0])
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <flag>",
	Short: "Redeem the flag placed at the given tick",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerification(cmd.Context(), func(ctx context.Context, svc *checkersvc.CheckerService) domain.Result {
			return svc.CheckFlag(ctx, tick, args[0])
		})
	},
}

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run the functionality probe suite against the target service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runVerification(cmd.Context(), func(ctx context.Context, svc *checkersvc.CheckerService) domain.Result {
			return svc.CheckService(ctx)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&tick, "tick", 0, "Scheduler tick this invocation belongs to")

	rootCmd.AddCommand(placeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serviceCmd)
}

// runVerification wires the service stack together, runs one verification and
// reports its result on stdout. Non-OK results map to a nonzero exit code so
// schedulers can consume the outcome without parsing output.
func runVerification(
	ctx context.Context,
	verify func(context.Context, *checkersvc.CheckerService) domain.Result,
) error {
	log := logging.GetLogger("cmd.checker")

	svc, err := checkersvc.NewCheckerService(
		targetclient.NewHTTPClient(cfg.HTTP, nil),
		flagrepo.SQLiteFlagRepositoryFactory(cfg.Flags),
		nil,
		cfg.Checker,
	)
	if err != nil {
		return fmt.Errorf("new checker service: %w", err)
	}

	defer func() {
		if err := svc.Close(); err != nil {
			log.ErrorContext(ctx, "close checker service", "err", err)
		}
	}()

	result := verify(ctx, svc)

	log.InfoContext(ctx, "verification finished", "result", result.String())
	fmt.Println(result.String())

	if result != domain.ResultOK {
		exitCode = 1
	}

	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(2)
	}

	os.Exit(exitCode)
}
