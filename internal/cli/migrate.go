package cli

import (
	"fmt"
	"io"
	"sort"

	"boleteria/internal/infra"

	"github.com/spf13/cobra"
)

type migrateResult struct {
	Aplicadas []int          `json:"aplicadas"`
	Fallidas  map[int]string `json:"fallidas"`
}

// NewMigrateCommand applies pending schema migrations.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := infra.OpenDatabase(rootOpts.DBPath)
			if err != nil {
				return err
			}
			defer infra.CloseDatabase(db)

			res, migErr := infra.NewMigrator(db).Migrate(cmd.Context())
			if res == nil {
				return migErr
			}

			out := migrateResult{Aplicadas: res.Aplicadas, Fallidas: map[int]string{}}
			for v, e := range res.Fallidas {
				out.Fallidas[v] = e.Error()
			}
			p := newPrinter(rootOpts, cmd.OutOrStdout())
			if err := p.emit(out, func(w io.Writer) {
				if len(out.Aplicadas) == 0 && len(out.Fallidas) == 0 {
					p.linef("schema up to date")
					return
				}
				for _, v := range out.Aplicadas {
					p.linef("applied  v%d", v)
				}
				fallidas := make([]int, 0, len(out.Fallidas))
				for v := range out.Fallidas {
					fallidas = append(fallidas, v)
				}
				sort.Ints(fallidas)
				for _, v := range fallidas {
					p.linef("failed   v%d: %s", v, out.Fallidas[v])
				}
			}); err != nil {
				return err
			}
			if migErr != nil {
				return migErr
			}
			if len(out.Fallidas) > 0 {
				return fmt.Errorf("%d migration(s) failed", len(out.Fallidas))
			}
			return nil
		},
	}
}

// NewStatusCommand lists every migration and whether it is applied.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show schema migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := infra.OpenDatabase(rootOpts.DBPath)
			if err != nil {
				return err
			}
			defer infra.CloseDatabase(db)

			estados, err := infra.NewMigrator(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			p := newPrinter(rootOpts, cmd.OutOrStdout())
			return p.emit(estados, func(w io.Writer) {
				for _, e := range estados {
					estado := "pending"
					if e.Aplicada {
						estado = "applied " + e.AplicadaEn.Local().Format("2006-01-02 15:04")
					}
					p.linef("v%-3d %-45s %s", e.Version, e.Descripcion, estado)
				}
			})
		},
	}
}
