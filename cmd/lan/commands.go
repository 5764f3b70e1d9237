package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/yast/yast-network-sub000/internal/application/polling"
	"github.com/yast/yast-network-sub000/internal/application/usecases"
	"github.com/yast/yast-network-sub000/internal/infrastructure/container"
	"github.com/yast/yast-network-sub000/internal/infrastructure/metrics"
	"github.com/yast/yast-network-sub000/internal/infrastructure/udev"
)

// Runner is one subcommand
type Runner interface {
	Name() string
	Description() string
	Init(args []string) error
	Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error
}

type baseCommand struct {
	fs          *flag.FlagSet
	description string
}

func (b *baseCommand) Name() string {
	return b.fs.Name()
}

func (b *baseCommand) Description() string {
	return b.description
}

func (b *baseCommand) Init(args []string) error {
	return b.fs.Parse(args)
}

// list

type listCommand struct {
	baseCommand
}

func newListCommand() *listCommand {
	return &listCommand{baseCommand{
		fs:          flag.NewFlagSet("list", flag.ExitOnError),
		description: "Show detected hardware joined with interface configurations",
	}}
}

func (l *listCommand) Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	output, err := c.GetReconcileUseCase().Execute(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATE\tMAC\tDRIVER\tBOOTPROTO\tUDEV NAME\tMASTER")
	for _, item := range output.Items {
		master := item.BondMaster
		if master == "" {
			master = item.BridgeMaster
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			item.ID, item.Name, item.Type, item.State, dash(item.MAC), dash(item.Driver),
			dash(item.BootProto), dash(item.UdevName), dash(master))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d configured, %d unconfigured, %d virtual\n", output.Configured, output.Unconfigured, output.Virtual)
	return nil
}

// autoinstall

type autoinstallCommand struct {
	baseCommand
	profile string
}

func newAutoinstallCommand() *autoinstallCommand {
	cmd := &autoinstallCommand{baseCommand: baseCommand{
		fs:          flag.NewFlagSet("autoinstall", flag.ExitOnError),
		description: "Apply the interfaces of an autoinstall profile",
	}}
	cmd.fs.StringVar(&cmd.profile, "profile", "", "Path to the YAML autoinstall profile")
	return cmd
}

func (a *autoinstallCommand) Init(args []string) error {
	if err := a.baseCommand.Init(args); err != nil {
		return err
	}
	if a.profile == "" {
		return stderrors.New("-profile is required")
	}
	return nil
}

func (a *autoinstallCommand) Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	profile, err := c.GetProfileLoader().Load(a.profile)
	if err != nil {
		return err
	}

	output, err := c.GetAutoinstallUseCase().Execute(ctx, profile)
	if output != nil {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DEVICE\tHARDWARE\tNAME\tRULE\tRESULT")
		for _, r := range output.Results {
			result := "ok"
			if r.Err != nil {
				result = r.Err.Error()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Device, dash(r.Hardware), dash(r.Name), dash(string(r.Rule)), result)
		}
		w.Flush()
	}
	if err != nil {
		return err
	}
	if output.Unmatched > 0 {
		return fmt.Errorf("%d profile interfaces could not be applied", output.Unmatched)
	}
	return nil
}

// write-udev

type writeUdevCommand struct {
	baseCommand
}

func newWriteUdevCommand() *writeUdevCommand {
	return &writeUdevCommand{baseCommand{
		fs:          flag.NewFlagSet("write-udev", flag.ExitOnError),
		description: "Persist udev naming rules and re-trigger net devices",
	}}
}

func (u *writeUdevCommand) Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	if _, err := c.GetReconcileUseCase().Execute(ctx); err != nil {
		return err
	}
	output, err := c.GetWriteUdevUseCase().Execute(ctx)
	if err != nil {
		return err
	}
	printRenames(output)
	return nil
}

// rename

type renameCommand struct {
	baseCommand
	from string
	to   string
}

func newRenameCommand() *renameCommand {
	cmd := &renameCommand{baseCommand: baseCommand{
		fs:          flag.NewFlagSet("rename", flag.ExitOnError),
		description: "Give a hardware device a new persistent name",
	}}
	cmd.fs.StringVar(&cmd.from, "device", "", "Current device name")
	cmd.fs.StringVar(&cmd.to, "name", "", "New device name")
	return cmd
}

func (r *renameCommand) Init(args []string) error {
	if err := r.baseCommand.Init(args); err != nil {
		return err
	}
	if r.from == "" || r.to == "" {
		return stderrors.New("-device and -name are required")
	}
	return nil
}

func (r *renameCommand) Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	output, err := c.GetRenameDeviceUseCase().Execute(ctx, usecases.RenameDeviceInput{Current: r.from, NewName: r.to})
	if err != nil {
		return err
	}
	printRenames(output)
	return nil
}

// slaves

type slavesCommand struct {
	baseCommand
	master string
}

func newSlavesCommand() *slavesCommand {
	cmd := &slavesCommand{baseCommand: baseCommand{
		fs:          flag.NewFlagSet("slaves", flag.ExitOnError),
		description: "List devices that may join a bond or bridge",
	}}
	cmd.fs.StringVar(&cmd.master, "master", "", "Bond or bridge device name")
	return cmd
}

func (s *slavesCommand) Init(args []string) error {
	if err := s.baseCommand.Init(args); err != nil {
		return err
	}
	if s.master == "" {
		return stderrors.New("-master is required")
	}
	return nil
}

func (s *slavesCommand) Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	output, err := c.GetSlaveCandidatesUseCase().Execute(ctx, s.master)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s): %s\n", output.Master, output.MasterType, dash(strings.Join(output.Candidates, " ")))
	return nil
}

// restore-udev

type restoreUdevCommand struct {
	baseCommand
}

func newRestoreUdevCommand() *restoreUdevCommand {
	return &restoreUdevCommand{baseCommand{
		fs:          flag.NewFlagSet("restore-udev", flag.ExitOnError),
		description: "Restore the newest backup of the udev naming rules",
	}}
}

func (r *restoreUdevCommand) Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	path := c.GetUdevRulesPath()
	if err := c.GetBackupService().RestoreLatestBackup(ctx, udev.BackupName(path), path); err != nil {
		return err
	}
	return c.GetUdevController().Reload(ctx)
}

// serve

type serveCommand struct {
	baseCommand
}

func newServeCommand() *serveCommand {
	return &serveCommand{baseCommand{
		fs:          flag.NewFlagSet("serve", flag.ExitOnError),
		description: "Reconcile periodically and expose /metrics and /healthz",
	}}
}

func (s *serveCommand) Run(ctx context.Context, c *container.Container, logger *logrus.Logger) error {
	cfg := c.GetConfig()
	healthService := c.GetHealthService()

	mux := http.NewServeMux()
	mux.Handle("/healthz", healthService)
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Metrics server started (with /healthz)")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Failed to shutdown metrics server")
		}
	}()

	var strategy polling.Strategy = &polling.FixedIntervalStrategy{Interval: cfg.Watch.Interval}
	if cfg.Watch.Multiplier > 1 {
		strategy = polling.NewExponentialBackoffStrategy(cfg.Watch.Interval, cfg.Watch.MaxInterval, cfg.Watch.Multiplier, logger)
	}
	controller := polling.NewPollingController(strategy, logger)
	session := c.GetSession()

	err := controller.Start(ctx, func(ctx context.Context) error {
		output, err := c.GetReconcileUseCase().Execute(ctx)
		if err != nil {
			healthService.RecordReconcile(0, 0, 0, session.RestartRequired(), err)
			metrics.RecordError(errorLabel(err))
			return err
		}
		healthService.RecordReconcile(len(output.Items), output.Unconfigured, output.Virtual, session.RestartRequired(), nil)
		return nil
	})
	if stderrors.Is(err, context.Canceled) {
		logger.Info("Received shutdown signal")
		return nil
	}
	return err
}

func printRenames(output *usecases.WriteUdevOutput) {
	if len(output.Renamed) == 0 {
		fmt.Println("udev rules written, no renames")
		return
	}
	fmt.Printf("udev rules written, renamed: %s\n", strings.Join(output.Renamed, " "))
	if output.RestartRequired {
		fmt.Println("restart the network service to apply the new names")
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
