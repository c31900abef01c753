package infra

// Cash-closure report: a thermal-receipt style page with:
//   - Header and seller
//   - Period date and closure timestamp
//   - One row per ticket type from the stored breakdown
//   - Ticket count and bold total
//
// The output file is saved to storagePath/cierre_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"boleteria/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerarCierrePDF writes the closure report and returns the file path.
// storagePath is created if needed.
func GenerarCierrePDF(cierre *model.CierreCaja, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%d.pdf", cierre.ID))

	lineas := lineasDetalle(cierre.Detalle)

	// 74mm wide like thermal paper; height grows with the breakdown.
	alto := 70 + 5*float64(len(lineas))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr("Cierre de Caja"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	vendedor := fmt.Sprintf("Usuario #%d", cierre.UsuarioID)
	if cierre.Usuario != nil {
		vendedor = cierre.Usuario.Nombre
	}
	pdf.CellFormat(contentW, 5, tr(vendedor), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Fecha: "+cierre.FechaInicio.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, "Cerrado: "+cierre.FechaCierre.Local().Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Breakdown ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(contentW, 5, "Detalle por tipo", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	if len(lineas) == 0 {
		pdf.CellFormat(contentW, 5, "Sin ventas impresas", "", 1, "L", false, 0, "")
	}
	for _, l := range lineas {
		pdf.CellFormat(contentW, 5, tr(l), "", 1, "L", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	col1 := contentW * 0.6
	col2 := contentW * 0.4

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(col1, 5, "Tickets:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, fmt.Sprintf("%d", cierre.CantidadTickets), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "$"+cierre.TotalVentas.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

func lineasDetalle(detalle string) []string {
	var out []string
	for _, l := range strings.Split(detalle, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
