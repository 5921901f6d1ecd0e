package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tripforge/itinerary"
)

// GeneratePDFBytes renders a day-by-day itinerary to PDF and returns the raw
// bytes (stored in PostgreSQL, no filesystem needed).
func GeneratePDFBytes(it itinerary.CanonicalItinerary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripForge", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "AI-Powered Travel Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, value, "", 1, "L", false, 0, "")
	}

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	row("Route", fmt.Sprintf("%s - %s", it.From, it.Destination))
	row("Start", fmtDateReadable(it.StartDate))
	row("Duration", fmt.Sprintf("%d day(s)", it.NumberOfDays))
	row("Travelers", fmt.Sprintf("%d", it.NumberOfPeople))
	if it.BudgetReference != nil {
		row("Budget", fmt.Sprintf("%.0f", *it.BudgetReference))
	}
	row("Generated", time.Now().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Selected Flight ───────────────────────────────────────
	if f := it.SelectedFlightOffer; f != nil && len(f.Itineraries) > 0 {
		sectionHeader("Selected Flight")
		for i, leg := range f.Itineraries {
			label := "Outbound"
			if i == 1 {
				label = "Return"
			}
			if len(leg.Segments) > 0 {
				first := leg.Segments[0]
				last := leg.Segments[len(leg.Segments)-1]
				carrier := first.CarrierCode
				if name, ok := f.AirlineNames[first.CarrierCode]; ok {
					carrier = name
				}
				row(label, fmt.Sprintf("%s %s%s  %s -> %s",
					carrier, first.CarrierCode, first.Number,
					first.Departure.IataCode, last.Arrival.IataCode))
			}
		}
		if f.Price.GrandTotal != "" {
			row("Price", fmt.Sprintf("%s %s", f.Price.GrandTotal, f.Price.Currency))
		}
		pdf.Ln(4)
	}

	// ── Daily Plan ────────────────────────────────────────────
	for i, day := range it.DailyItinerary {
		sectionHeader(fmt.Sprintf("Day %d - %s", i+1, fmtDateReadable(day.Date)))
		if day.ThemeFocus != "" {
			row("Focus", day.ThemeFocus)
		}
		if day.Accommodation.Name != "" {
			row("Stay", day.Accommodation.Name)
		}
		for _, act := range day.Activities {
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetTextColor(40, 40, 40)
			line := act.Description
			if act.Time != "" {
				line = act.Time + "  " + line
			}
			if act.Location != "" {
				line += " (" + act.Location + ")"
			}
			pdf.MultiCell(170, 5, line, "", "L", false)
		}
		bb := day.BudgetBreakdown
		row("Budget", fmt.Sprintf("stay %.0f / food %.0f / transport %.0f / misc %.0f",
			bb.Accommodation, bb.FoodDrinks, bb.Transport, bb.Miscellaneous))
		pdf.Ln(3)
	}

	// ── Notes ─────────────────────────────────────────────────
	if it.Notes != "" {
		sectionHeader("Notes")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(170, 5, it.Notes, "", "L", false)
		pdf.Ln(4)
	}

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8,
		"Generated by TripForge - Not a booking confirmation - Prices subject to change",
		"", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}
