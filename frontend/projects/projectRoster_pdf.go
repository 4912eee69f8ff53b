package projects

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
)

// RosterData is the content of a printed project roster.
type RosterData struct {
	ProjectID   int64
	Name        string
	Description string
	OwnerName   string
	Members     []MemberRow
	DetailURL   string
}

func renderRosterPDF(data RosterData, printedAt time.Time) ([]byte, error) {
	if data.ProjectID <= 0 {
		return nil, errors.New("roster without project id")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Proyecto "+data.Name), false)
	pdf.AddPage()

	name := strings.TrimSpace(data.Name)
	if name == "" {
		name = "Proyecto sin nombre"
	}
	description := strings.TrimSpace(data.Description)
	if description == "" {
		description = "-"
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()

	if strings.TrimSpace(data.DetailURL) != "" {
		qrPNG, err := renderQRPNG(data.DetailURL, 256)
		if err != nil {
			return nil, err
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := fmt.Sprintf("project-qr-%d", data.ProjectID)
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(qrPNG))
		size := 32.0
		pdf.ImageOptions(imageName, pageW-right-size, 10, size, size, false, opt, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 12, tr(name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, tr("Administrador: "+data.OwnerName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Impreso: "+printedAt.Format("02/01/2006 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.MultiCell(pageW-left-right-36, 6, tr(description), "", "L", false)
	pdf.SetY(48)

	nameW := (pageW - left - right) * 0.45
	emailW := pageW - left - right - nameW - 12
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(12, 8, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(nameW, 8, "Nombre", "1", 0, "L", true, 0, "")
	pdf.CellFormat(emailW, 8, "Email", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	if len(data.Members) == 0 {
		pdf.CellFormat(0, 8, tr("Sin usuarios asignados"), "1", 1, "C", false, 0, "")
	}
	for i, m := range data.Members {
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(nameW, 7, tr(m.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(emailW, 7, tr(m.Email), "1", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Total de usuarios asignados: %d", len(data.Members))), "", 1, "R", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderQRPNG(value string, size int) ([]byte, error) {
	code, err := qr.Encode(value, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
