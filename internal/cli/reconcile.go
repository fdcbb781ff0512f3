package cli

import (
	"encoding/json"

	"storefront/internal/app"
	"storefront/internal/database"
	"storefront/internal/payment"

	"github.com/spf13/cobra"
)

func newReconcileCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Settle orders whose payment is still pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := rt.openStore()
			if err != nil {
				return err
			}
			defer database.Close(db)

			svc := app.NewServices(app.Deps{
				Config:  rt.cfg,
				Store:   store,
				Gateway: payment.NewSimulatedGateway(rt.cfg.Payment.Delay),
			})
			report, err := svc.Orders.ReconcilePending(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
