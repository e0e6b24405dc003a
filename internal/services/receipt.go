package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

const (
	PDFContentType   = "application/pdf"
	receiptTimestamp = "02 January 2006, 15:04 MST"
)

// Receipt renders a printable deposit slip for one transaction.
func (s *ExportService) Receipt(ctx context.Context, id string) (Document, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return Document{}, notFound(err, "Transaksi tidak ditemukan.")
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetTitle("Bukti Setoran "+tx.ID, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "BUKTI SETORAN", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Mobile Collector", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	customerName, accountNumber := "-", "-"
	if tx.Customer != nil {
		customerName = tx.Customer.FullName
		accountNumber = tx.Customer.NasabahID
	}
	officer := "-"
	if tx.User != nil {
		officer = tx.User.FullName
	}

	pdf.SetFont("Arial", "", 10)
	for _, line := range [][2]string{
		{"No. Transaksi", tx.ID},
		{"Tanggal", tx.CreatedAt.In(s.location).Format(receiptTimestamp)},
		{"No. Rekening", accountNumber},
		{"Nama Nasabah", customerName},
		{"Jenis Transaksi", strings.ToUpper(string(tx.TransactionType))},
		{"Jumlah", FormatRupiah(tx.Amount)},
		{"Kode Kantor", tx.OfficeCode},
		{"Petugas", officer},
	} {
		pdf.Cell(35, 7, line[0])
		pdf.Cell(0, 7, ": "+tr(line[1]))
		pdf.Ln(7)
	}

	pdf.Ln(3)
	pdf.MultiCell(0, 6, tr(tx.Description), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Document{}, fmt.Errorf("render receipt: %w", err)
	}

	return Document{
		Filename:    fmt.Sprintf("Bukti_Setoran_%s.pdf", SanitizeFilename(tx.ID)),
		ContentType: PDFContentType,
		Data:        buf.Bytes(),
	}, nil
}

// FormatRupiah renders an amount the Indonesian way, e.g. "Rp 1.250.000,50".
func FormatRupiah(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}
	return fmt.Sprintf("%sRp %s,%s", sign, grouped.String(), frac)
}

