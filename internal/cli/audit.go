package cli

import (
	"io"

	"boleteria/internal/dto"
	"boleteria/internal/infra"
	"boleteria/internal/repository"
	"boleteria/internal/service"

	"github.com/spf13/cobra"
)

// NewAuditCommand groups the audit log maintenance commands.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and purge the configuration audit log",
	}
	cmd.AddCommand(newAuditPurgeCommand(rootOpts))
	cmd.AddCommand(newAuditStatsCommand(rootOpts))
	return cmd
}

func openAuditoria(rootOpts *RootOptions) (service.AuditoriaService, func(), error) {
	db, err := infra.NewDatabase(rootOpts.DBPath)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewAuditoriaService(repository.NewConfigLogRepository(db))
	return svc, func() { _ = infra.CloseDatabase(db) }, nil
}

func newAuditPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	var dias int
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete audit entries older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openAuditoria(rootOpts)
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := svc.Purgar(cmd.Context(), dias)
			if err != nil {
				return err
			}
			p := newPrinter(rootOpts, cmd.OutOrStdout())
			return p.emit(dto.PurgarAuditoriaResponse{Eliminados: n}, func(w io.Writer) {
				p.linef("%d entries removed", n)
			})
		},
	}
	cmd.Flags().IntVar(&dias, "days", 365, "retention in days")
	return cmd
}

func newAuditStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count audit entries per table and action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := openAuditoria(rootOpts)
			if err != nil {
				return err
			}
			defer closeDB()

			stats, err := svc.Estadisticas(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(rootOpts, cmd.OutOrStdout())
			return p.emit(stats, func(w io.Writer) {
				if len(stats) == 0 {
					p.linef("no audit entries")
					return
				}
				for _, s := range stats {
					p.linef("%-15s %-10s %5d  %s", s.Tabla, s.Accion, s.Cantidad, s.UltimoRegistro.Local().Format("2006-01-02 15:04"))
				}
			})
		},
	}
}
