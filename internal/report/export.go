package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"toko-kelontong-pos/internal/session"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const SheetName = "Laporan Keuangan"

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var idPrinter = message.NewPrinter(language.Indonesian)

// Filename follows Laporan_Keuangan_<label>_<YYYY-MM-DD>.xlsx with spaces in
// the label replaced by underscores.
func Filename(period Period, exportedAt time.Time) string {
	return fmt.Sprintf("Laporan_Keuangan_%s_%s.xlsx",
		strings.ReplaceAll(period.Label(), " ", "_"),
		exportedAt.Format("2006-01-02"))
}

// Export builds the period report and renders it as a single-sheet workbook.
func (s *Service) Export(ctx context.Context, who session.Principal, period Period) (string, []byte, error) {
	r, err := s.Build(ctx, who, period)
	if err != nil {
		return "", nil, err
	}
	now := s.now()
	data, err := Render(r, now)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("report exported",
		zap.String("period", string(period)),
		zap.Int("sales", len(r.Sales)),
		zap.Int("purchases", len(r.Purchases)))
	return Filename(period, now), data, nil
}

// Render writes the summary block, then sales history, then purchase history,
// one blank row between blocks.
func Render(r *Report, exportedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"LAPORAN KEUANGAN"},
		{"Periode:", r.Label},
		{"Tanggal Export:", exportedAt.Format("2/1/2006")},
		{},
		{"RINGKASAN"},
		{"Total Penjualan", Rupiah(r.TotalSales)},
		{"Total Pembelian", Rupiah(r.TotalPurchases)},
		{"Laba Kotor", Rupiah(r.Profit)},
		{"Jumlah Transaksi", r.TransactionCount},
		{"Rata-rata Transaksi", Rupiah(r.AverageSale)},
		{},
		{"RIWAYAT PENJUALAN"},
		{"Tanggal", "Kasir", "Metode Pembayaran", "Total"},
	}
	for _, sale := range r.Sales {
		rows = append(rows, []interface{}{
			stamp(sale.CreatedAt), sale.Cashier, sale.PaymentLabel, sale.Total.InexactFloat64(),
		})
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"RIWAYAT PEMBELIAN"},
		[]interface{}{"Tanggal", "Supplier", "Status Pembayaran", "Total"},
	)
	for _, p := range r.Purchases {
		rows = append(rows, []interface{}{
			stamp(p.CreatedAt), p.Supplier, p.StatusLabel, p.Total.InexactFloat64(),
		})
	}

	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	for col, width := range map[string]float64{"A": 20, "B": 20, "C": 20, "D": 15} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Rupiah formats a whole-rupiah amount the Indonesian way, e.g. "Rp 45.000".
func Rupiah(d decimal.Decimal) string {
	n := d.Round(0).IntPart()
	if n < 0 {
		return idPrinter.Sprintf("-Rp %d", -n)
	}
	return idPrinter.Sprintf("Rp %d", n)
}

func stamp(t time.Time) string {
	return t.Format("02 Jan 2006 15:04")
}
