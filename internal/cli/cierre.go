package cli

import (
	"fmt"
	"io"
	"strconv"

	"boleteria/internal/dto"
	"boleteria/internal/infra"
	"boleteria/internal/repository"
	"boleteria/internal/service"

	"github.com/spf13/cobra"
)

// NewCierreCommand groups cash-closure utilities.
func NewCierreCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cierre",
		Short: "Cash-closure utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pdf <cierre-id>",
		Short: "Render the closure report to --pdf-dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid cierre id %q", args[0])
			}
			db, err := infra.NewDatabase(rootOpts.DBPath)
			if err != nil {
				return err
			}
			defer infra.CloseDatabase(db)

			svc := service.NewCierreService(repository.NewCierreRepository(db), rootOpts.PDFPath)
			path, err := svc.GenerarReportePDF(cmd.Context(), id)
			if err != nil {
				return err
			}
			p := newPrinter(rootOpts, cmd.OutOrStdout())
			return p.emit(dto.ReporteCierreResponse{Path: path}, func(w io.Writer) {
				p.linef("%s", path)
			})
		},
	})
	return cmd
}
