package admin

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vardhacyc/srinidhi-feast-builder-sub000/internal/domain"
)

var exportHeader = []string{
	"Order ID",
	"Customer Name",
	"Mobile",
	"Address",
	"Order Date",
	"Status",
	"Items",
	"Subtotal",
	"Tax",
	"Total",
	"Total Units",
	"Special Instructions",
	"Days Since Order",
}

// WriteCSV serializes the order set as the operator export.
func WriteCSV(w io.Writer, orders []*domain.Order, now time.Time) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, o := range orders {
		row := []string{
			o.ShortID(),
			o.Customer.Name,
			o.Customer.Phone,
			o.Address,
			o.CreatedAt.Format("2006-01-02 15:04"),
			string(o.Status),
			joinItems(o.Items),
			fmt.Sprintf("%.2f", o.Subtotal),
			fmt.Sprintf("%.2f", o.TaxAmount),
			fmt.Sprintf("%.2f", o.TotalAmount),
			fmt.Sprintf("%d", o.TotalUnits),
			o.SpecialInstructions,
			fmt.Sprintf("%d", daysSince(o.CreatedAt, now)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func joinItems(items []domain.OrderItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s(%d %s)", item.Name, item.Quantity, item.Unit)
	}
	return strings.Join(parts, "; ")
}

func daysSince(t, now time.Time) int {
	d := int(now.Sub(t).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
