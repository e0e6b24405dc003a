package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/mobilecollector/backoffice/types"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetAllTransactions       = "Data Transaksi"
	SheetMarketingTransactions = "Laporan Transaksi Marketing"

	numFmtThousands = 4 // #,##0.00
	exportTimestamp = "02/01/2006 15:04"
)

var (
	AllTransactionsHeader       = []string{"Nomor Rekening", "Jumlah", "Deskripsi", "Jenis Transaksi", "Kode Kantor"}
	MarketingTransactionsHeader = []string{"No.", "Tanggal Transaksi", "Nama Nasabah", "Jenis Transaksi", "Jumlah (Rp)", "Deskripsi", "Nama Marketing"}

	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// TransactionLister loads the full, unpaginated set of transactions for a filter.
type TransactionLister interface {
	ListAll(ctx context.Context, filter types.TransactionFilter) ([]types.Transaction, error)
	GetByID(ctx context.Context, id string) (types.Transaction, error)
}

// MarketingLookup resolves a marketing officer by display name.
type MarketingLookup interface {
	GetByFullName(ctx context.Context, fullName string) (types.User, error)
}

// Archiver keeps a copy of generated documents, e.g. in object storage.
type Archiver interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Document is a generated file ready to be served as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders transactions into downloadable documents.
type ExportService struct {
	transactions TransactionLister
	users        MarketingLookup
	archiver     Archiver
	location     *time.Location
	now          func() time.Time
}

func NewExportService(transactions TransactionLister, users MarketingLookup, archiver Archiver, loc *time.Location) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		transactions: transactions,
		users:        users,
		archiver:     archiver,
		location:     loc,
		now:          time.Now,
	}
}

// ExportAll writes every matching transaction, newest first, to a workbook.
func (s *ExportService) ExportAll(ctx context.Context, filter types.TransactionFilter) (Document, error) {
	txs, err := s.transactions.ListAll(ctx, filter)
	if err != nil {
		return Document{}, err
	}
	if len(txs) == 0 {
		return Document{}, &NotFoundError{Message: "Tidak ada data transaksi untuk diekspor."}
	}

	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		accountNumber := ""
		if tx.Customer != nil {
			accountNumber = tx.Customer.NasabahID
		}
		rows = append(rows, []any{
			accountNumber,
			tx.Amount.InexactFloat64(),
			tx.Description,
			string(tx.TransactionType),
			tx.OfficeCode,
		})
	}

	data, err := buildWorkbook(SheetAllTransactions, AllTransactionsHeader, rows, 2)
	if err != nil {
		return Document{}, fmt.Errorf("build workbook: %w", err)
	}

	doc := Document{
		Filename:    fmt.Sprintf("Laporan_Transaksi_%s.xlsx", s.now().In(s.location).Format(dateLayout)),
		ContentType: XLSXContentType,
		Data:        data,
	}
	s.archive(ctx, doc)
	return doc, nil
}

// ExportMarketing writes the transactions created by the named marketing
// officer to a workbook.
func (s *ExportService) ExportMarketing(ctx context.Context, marketingName string) (Document, error) {
	marketingName = strings.TrimSpace(marketingName)
	if marketingName == "" {
		return Document{}, invalid("marketingName wajib diisi")
	}

	user, err := s.users.GetByFullName(ctx, marketingName)
	if err != nil {
		return Document{}, notFound(err, fmt.Sprintf("Marketing %q tidak ditemukan.", marketingName))
	}

	txs, err := s.transactions.ListAll(ctx, types.TransactionFilter{UserID: user.ID})
	if err != nil {
		return Document{}, err
	}
	if len(txs) == 0 {
		return Document{}, &NotFoundError{Message: fmt.Sprintf("Tidak ada transaksi untuk marketing %q.", marketingName)}
	}

	rows := make([][]any, 0, len(txs))
	for i, tx := range txs {
		customerName := ""
		if tx.Customer != nil {
			customerName = tx.Customer.FullName
		}
		rows = append(rows, []any{
			i + 1,
			tx.CreatedAt.In(s.location).Format(exportTimestamp),
			customerName,
			string(tx.TransactionType),
			tx.Amount.InexactFloat64(),
			tx.Description,
			user.FullName,
		})
	}

	data, err := buildWorkbook(SheetMarketingTransactions, MarketingTransactionsHeader, rows, 5)
	if err != nil {
		return Document{}, fmt.Errorf("build workbook: %w", err)
	}

	doc := Document{
		Filename:    fmt.Sprintf("Laporan_Transaksi_%s.xlsx", SanitizeFilename(user.FullName)),
		ContentType: XLSXContentType,
		Data:        data,
	}
	s.archive(ctx, doc)
	return doc, nil
}

// SanitizeFilename replaces every character outside [a-zA-Z0-9] with '_'.
func SanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

func (s *ExportService) archive(ctx context.Context, doc Document) {
	if s.archiver == nil {
		return
	}
	key := fmt.Sprintf("exports/%s/%s-%s", s.now().In(s.location).Format("2006/01/02"), ulid.Make().String(), doc.Filename)
	if err := s.archiver.Put(ctx, key, bytes.NewReader(doc.Data), int64(len(doc.Data)), doc.ContentType); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("failed to archive export")
		return
	}
	log.Ctx(ctx).Info().Str("key", key).Msg("export archived")
}

// buildWorkbook renders a single-sheet workbook with a bold, bordered header.
// amountCol is the 1-based column formatted as a thousands-separated number.
func buildWorkbook(sheet string, header []string, rows [][]any, amountCol int) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    border,
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands})
	if err != nil {
		return nil, err
	}

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if len(rows) > 0 {
		amountName, err := excelize.ColumnNumberToName(amountCol)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, amountName+"2", fmt.Sprintf("%s%d", amountName, len(rows)+1), amountStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
