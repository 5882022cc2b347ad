package report

import (
	"bytes"
	"fmt"
	"time"

	"muttonhub-backend/internal/export"
	"muttonhub-backend/internal/settlement"
)

const generatedLayout = "2006-01-02 15:04:05"

var (
	buyerHeaders = []string{
		"Date", "Buyer Name", "Buyer Phone", "Number of Goats", "Total Amount",
		"Paid Amount", "Remaining Balance", "Payment Mode", "Status",
	}
	sellerHeaders = []string{
		"Date", "Seller Name", "Seller Phone", "Weight (KG)", "Price per KG", "Total Amount",
		"Paid Amount", "Remaining Balance", "Payment Mode", "Status",
	}
	combinedHeaders = []string{
		"Type", "Date", "Party Name", "Party Phone", "Details", "Amount",
		"Paid", "Remaining", "Payment Mode", "Status",
	}
)

func partyOr(name string) string {
	if name == "" {
		return "Unknown"
	}
	return name
}

func BuyerWorkbook(rep *Report, now time.Time) (*bytes.Buffer, string, error) {
	rows := make([][]any, 0, len(rep.BuyerTransactions))
	for _, tx := range rep.BuyerTransactions {
		var name, phone string
		if tx.Buyer != nil {
			name, phone = tx.Buyer.Name, tx.Buyer.Phone
		}
		rows = append(rows, []any{
			tx.EntryDate.Format(dateLayout), partyOr(name), phone, tx.NumberOfGoats,
			tx.TotalAmount, tx.PaidAmount, tx.RemainingBalance, string(tx.PaymentMode),
			settlement.StatusOf(tx.RemainingBalance),
		})
	}

	summary := [][]any{
		{"Buyer Transactions Summary"},
		{""},
		{"Total Transactions", rep.Buyers.Count},
		{"Total Amount", rep.Buyers.TotalAmount},
		{"Total Paid", rep.Buyers.PaidAmount},
		{"Total Pending", rep.Buyers.RemainingBalance},
		{""},
		{"Date Range", rep.Start + " to " + rep.End},
		{"Generated On", now.Format(generatedLayout)},
	}

	buf, err := export.Build(
		export.Sheet{Name: "Buyer Transactions", Headers: buyerHeaders, Rows: rows},
		export.Sheet{Name: "Summary", Rows: summary},
	)
	if err != nil {
		return nil, "", err
	}
	return buf, export.RangeFileName("buyer-transactions", rep.Start, rep.End), nil
}

func SellerWorkbook(rep *Report, now time.Time) (*bytes.Buffer, string, error) {
	rows := make([][]any, 0, len(rep.SellerTransactions))
	for _, tx := range rep.SellerTransactions {
		var name, phone string
		if tx.Seller != nil {
			name, phone = tx.Seller.Name, tx.Seller.Phone
		}
		rows = append(rows, []any{
			tx.EntryDate.Format(dateLayout), partyOr(name), phone, tx.TotalWeight, tx.PricePerKg,
			tx.TotalAmount, tx.PaidAmount, tx.RemainingBalance, string(tx.PaymentMode),
			settlement.StatusOf(tx.RemainingBalance),
		})
	}

	summary := [][]any{
		{"Seller Transactions Summary"},
		{""},
		{"Total Transactions", rep.Sellers.Count},
		{"Total Amount", rep.Sellers.TotalAmount},
		{"Total Paid", rep.Sellers.PaidAmount},
		{"Total Pending", rep.Sellers.RemainingBalance},
		{"Total Weight (KG)", rep.Sellers.TotalWeight},
		{""},
		{"Date Range", rep.Start + " to " + rep.End},
		{"Generated On", now.Format(generatedLayout)},
	}

	buf, err := export.Build(
		export.Sheet{Name: "Seller Transactions", Headers: sellerHeaders, Rows: rows},
		export.Sheet{Name: "Summary", Rows: summary},
	)
	if err != nil {
		return nil, "", err
	}
	return buf, export.RangeFileName("seller-transactions", rep.Start, rep.End), nil
}

func CombinedWorkbook(rep *Report, now time.Time) (*bytes.Buffer, string, error) {
	buyerRows := make([][]any, 0, len(rep.BuyerTransactions))
	for _, tx := range rep.BuyerTransactions {
		var name, phone string
		if tx.Buyer != nil {
			name, phone = tx.Buyer.Name, tx.Buyer.Phone
		}
		buyerRows = append(buyerRows, []any{
			"Purchase", tx.EntryDate.Format(dateLayout), partyOr(name), phone,
			fmt.Sprintf("%d goats", tx.NumberOfGoats),
			tx.TotalAmount, tx.PaidAmount, tx.RemainingBalance, string(tx.PaymentMode),
			settlement.StatusOf(tx.RemainingBalance),
		})
	}

	sellerRows := make([][]any, 0, len(rep.SellerTransactions))
	for _, tx := range rep.SellerTransactions {
		var name, phone string
		if tx.Seller != nil {
			name, phone = tx.Seller.Name, tx.Seller.Phone
		}
		sellerRows = append(sellerRows, []any{
			"Sale", tx.EntryDate.Format(dateLayout), partyOr(name), phone,
			fmt.Sprintf("%s KG @ ₹%s/KG", tx.TotalWeight.String(), tx.PricePerKg.String()),
			tx.TotalAmount, tx.PaidAmount, tx.RemainingBalance, string(tx.PaymentMode),
			settlement.StatusOf(tx.RemainingBalance),
		})
	}

	summary := [][]any{
		{"Mutton Hub - Combined Report Summary"},
		{""},
		{"BUYER TRANSACTIONS"},
		{"Total Transactions", rep.Buyers.Count},
		{"Total Amount", rep.Buyers.TotalAmount},
		{"Total Paid", rep.Buyers.PaidAmount},
		{"Total Pending", rep.Buyers.RemainingBalance},
		{""},
		{"SELLER TRANSACTIONS"},
		{"Total Transactions", rep.Sellers.Count},
		{"Total Amount", rep.Sellers.TotalAmount},
		{"Total Paid", rep.Sellers.PaidAmount},
		{"Total Pending", rep.Sellers.RemainingBalance},
		{""},
		{"OVERALL SUMMARY"},
		{"Total Transactions", rep.Overall.Count},
		{"Total Amount", rep.Overall.TotalAmount},
		{"Total Paid", rep.Overall.PaidAmount},
		{"Total Pending", rep.Overall.RemainingBalance},
		{"Net Position", rep.NetPosition},
		{""},
		{"Date Range", rep.Start + " to " + rep.End},
		{"Generated On", now.Format(generatedLayout)},
	}

	buf, err := export.Build(
		export.Sheet{Name: "Buyer Transactions", Headers: combinedHeaders, Rows: buyerRows},
		export.Sheet{Name: "Seller Transactions", Headers: combinedHeaders, Rows: sellerRows},
		export.Sheet{Name: "Summary", Rows: summary},
	)
	if err != nil {
		return nil, "", err
	}
	return buf, export.RangeFileName("combined-report", rep.Start, rep.End), nil
}
