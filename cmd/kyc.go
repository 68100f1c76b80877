package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/drivelink/backoffice/internal"
	"github.com/drivelink/backoffice/internal/core/events"
	"github.com/drivelink/backoffice/internal/kyc"
	kycPostgres "github.com/drivelink/backoffice/internal/kyc/postgres"
	"github.com/drivelink/backoffice/pkg/logger"
	"github.com/spf13/cobra"
)

var kycCmd = &cobra.Command{
	Use:   "kyc",
	Short: "Inspect and repair driver KYC progress",
}

var kycShowCmd = &cobra.Command{
	Use:   "show [driver-id]",
	Short: "Print the KYC summary and audit trail of a driver",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driverID, err := parseDriverID(args[0])
		if err != nil {
			return err
		}
		svc, err := kycCLIService()
		if err != nil {
			return err
		}

		ctx := context.Background()
		summary, err := svc.Summary(ctx, driverID)
		if err != nil {
			return err
		}
		trail, err := svc.AuditTrail(ctx, driverID)
		if err != nil {
			return err
		}
		return printJSON(map[string]interface{}{"summary": summary, "audit": trail})
	},
}

var (
	resetReason string
	resetActor  int64
)

var kycResetCmd = &cobra.Command{
	Use:   "reset [driver-id]",
	Short: "Reset a driver's KYC to not started and record the reason",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		driverID, err := parseDriverID(args[0])
		if err != nil {
			return err
		}
		svc, err := kycCLIService()
		if err != nil {
			return err
		}

		ctx := context.Background()
		if resetActor > 0 {
			ctx = internal.ContextWithActorID(ctx, resetActor)
		}
		progress, err := svc.Reset(ctx, driverID, resetReason)
		if err != nil {
			return err
		}
		return printJSON(kyc.NewProgressResponse(progress))
	},
}

// kycCLIService builds the KYC service without redis; the audit trail is
// written synchronously so the process can exit right after the command.
func kycCLIService() (*kyc.Service, error) {
	cfg := mustLoadConfig()
	lg := logger.LoggerWrapper()

	db, err := initGorm(cfg.Database)
	if err != nil {
		return nil, err
	}
	repo := kycPostgres.NewKycRepository(db)

	bus := events.NewEventBus(lg)
	kyc.NewAuditRecorder(repo, lg).Register(bus)

	svc := kyc.NewService(repo, syncPublisher{bus}, kyc.RejectionPolicy(cfg.Kyc.RejectionPolicy), lg)
	return svc, nil
}

type syncPublisher struct {
	bus *events.EventBus
}

func (p syncPublisher) Publish(ctx context.Context, event events.Event) error {
	return p.bus.PublishSync(ctx, event)
}

func parseDriverID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid driver id %q", arg)
	}
	return id, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	kycResetCmd.Flags().StringVar(&resetReason, "reason", "", "Reason recorded on the driver and in the audit trail")
	kycResetCmd.Flags().Int64Var(&resetActor, "actor", 0, "Admin id recorded as the actor")
	_ = kycResetCmd.MarkFlagRequired("reason")

	kycCmd.AddCommand(kycShowCmd)
	kycCmd.AddCommand(kycResetCmd)
}
