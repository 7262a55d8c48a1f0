// Package main is the motion control daemon. It reads one order or control word per line on
// stdin and runs them on the configured motion stack.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/motioncontrol"
	"github.com/fbrobotics/motioncore/registry"
	"github.com/fbrobotics/motioncore/robot"
)

const (
	flagConfig      = "config"
	flagDebug       = "debug"
	flagExitOnIdle  = "exit-when-idle"
	idlePollPeriod  = 50 * time.Millisecond
	defaultLoggerID = "motiond"
)

func main() {
	app := &cli.App{
		Name:            "motiond",
		Usage:           "run the motion control stack",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "start the control loops and read orders from stdin",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  flagExitOnIdle,
						Usage: "exit once stdin is closed and every order has run",
					},
				},
				Action: runAction,
			},
			{
				Name:      "validate",
				Usage:     "check a config file",
				ArgsUsage: "[FILE]",
				Action:    validateAction,
			},
			{
				Name:   "models",
				Usage:  "list the registered component models",
				Action: modelsAction,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readConfig(ctx context.Context, path string, logger logging.Logger) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Read(ctx, path, logger)
}

// newLogger builds the process logger from the log section of the config. The returned closer
// flushes the log file, if any.
func newLogger(cfg config.Log, debug bool) (logging.Logger, func() error, error) {
	level, err := logging.LevelFromString(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if debug {
		level = logging.DEBUG
	}
	if cfg.File != "" {
		return logging.NewFileLogger(defaultLoggerID, level, logging.FileConfig{
			Path:       cfg.File,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	}
	logger := logging.NewLogger(defaultLoggerID)
	logger.SetLevel(level)
	return logger, func() error { return nil }, nil
}

func runAction(c *cli.Context) error {
	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := readConfig(ctx, c.String(flagConfig), logging.NewBlankLogger(defaultLoggerID))
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.Log, c.Bool(flagDebug))
	if err != nil {
		return err
	}
	defer func() {
		goutils.UncheckedError(closeLog())
	}()
	logging.ReplaceGlobal(logger)

	r, err := robot.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(context.Background()); err != nil {
			logger.Errorw("error closing robot", "error", err)
		}
	}()
	if err := r.Start(); err != nil {
		return err
	}
	r.Enable()

	eof := make(chan struct{})
	goutils.PanicCapturingGo(func() {
		defer close(eof)
		scanner := bufio.NewScanner(c.App.Reader)
		for scanner.Scan() {
			if err := handleLine(r, scanner.Text(), c.App.Writer); err != nil {
				fmt.Fprintln(c.App.ErrWriter, err)
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Warnw("cannot read orders", "error", err)
		}
	})

	select {
	case <-ctx.Done():
		return nil
	case <-eof:
	}
	if !c.Bool(flagExitOnIdle) {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(idlePollPeriod)
	defer ticker.Stop()
	for {
		if idle(r) {
			fmt.Fprintln(c.App.Writer, r.Status())
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func idle(r *robot.Robot) bool {
	return r.Orchestrator().Pending() == 0 &&
		r.Status().Has(motioncontrol.StatusTrajectoryFinished) &&
		r.Planner().State().Idle()
}

// handleLine runs one line of input. JSON objects are orders; bare words control the
// orchestrator.
func handleLine(r *robot.Robot, line string, w io.Writer) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	if strings.HasPrefix(line, "{") {
		cmd, err := motioncontrol.ParseCommand([]byte(line))
		if err != nil {
			return err
		}
		return errors.Wrapf(r.Submit(cmd), "cannot submit %s", cmd)
	}
	switch line {
	case "enable":
		r.Enable()
	case "disable":
		r.Disable()
	case "safeguard on":
		r.Orchestrator().EnableSafeguard()
	case "safeguard off":
		r.Orchestrator().DisableSafeguard()
	case "stop":
		r.Orchestrator().Stop()
	case "freewheel":
		r.Orchestrator().Freewheel()
	case "clear":
		fmt.Fprintf(w, "dropped %d orders\n", r.Orchestrator().ClearInbox())
	case "status":
		pose := r.Odometry().CurrentPose()
		fmt.Fprintf(w, "%s state=%s step=%d pose=[%s]\n",
			r.Status(), r.Planner().State(), r.Planner().CurrentStep(), pose)
	default:
		return errors.Errorf("unknown control word %q", line)
	}
	return nil
}

func validateAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = c.String(flagConfig)
	}
	if path == "" {
		return errors.New("no config file given")
	}
	cfg, err := config.Read(c.Context, path, logging.NewBlankLogger(defaultLoggerID))
	if err != nil {
		return err
	}
	for idx := range cfg.Components {
		if err := registry.ConvertAttributes(&cfg.Components[idx]); err != nil {
			return config.NewValidationError(fmt.Sprintf("components.%d", idx), err)
		}
		if err := cfg.Components[idx].Validate(fmt.Sprintf("components.%d", idx)); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.App.Writer, "%s: ok (%d components)\n", path, len(cfg.Components))
	if len(cfg.Components) > 0 {
		fmt.Fprintln(c.App.Writer, config.ComponentsTable(cfg.Components))
	}
	return nil
}

func modelsAction(c *cli.Context) error {
	for _, api := range []registry.API{registry.TelemeterAPI, registry.ContactAPI, registry.IndicatorAPI} {
		fmt.Fprintf(c.App.Writer, "%s: %s\n", api, strings.Join(registry.Models(api), ", "))
	}
	return nil
}
