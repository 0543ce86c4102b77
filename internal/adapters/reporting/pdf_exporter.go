// Package reporting renders scan inventories as PDF documents.
package reporting

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

// maxRows bounds each table so a busy site still yields a readable report.
const maxRows = 200

// Inventory is the data a report is rendered from.
type Inventory struct {
	Title        string
	GeneratedAt  time.Time
	Status       domain.ScanState
	Counts       domain.Counts
	Stats        domain.Statistics
	AccessPoints []domain.AccessPoint
	Clients      []domain.Client
}

// Collect snapshots the scan service into an Inventory.
func Collect(svc ports.ScanService, at time.Time) Inventory {
	return Inventory{
		Title:        "Wireless Inventory",
		GeneratedAt:  at,
		Status:       svc.Status(),
		Counts:       svc.Counts(),
		Stats:        svc.Statistics(),
		AccessPoints: svc.AccessPoints(),
		Clients:      svc.Clients(),
	}
}

// Reveals returns the revealed access points, most recent first.
func (inv Inventory) Reveals() []domain.AccessPoint {
	var out []domain.AccessPoint
	for _, ap := range inv.AccessPoints {
		if ap.SSIDRevealed {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RevealedAt.After(out[j].RevealedAt) })
	return out
}

// PDFExporter exports inventories to PDF format.
type PDFExporter struct{}

func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Export renders inv as an A4 PDF.
func (e *PDFExporter) Export(inv Inventory) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, inv)
	e.addStatistics(pdf, inv)
	e.addReveals(pdf, tr, inv.Reveals())
	e.addAccessPoints(pdf, tr, inv.AccessPoints)
	e.addClients(pdf, inv.Clients)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, inv Inventory) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, inv.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, "Generated: "+inv.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "L", false, 0, "")

	st := inv.Status
	session := fmt.Sprintf("Mode: %s", st.Mode)
	if st.SessionID != "" {
		session += fmt.Sprintf(" | Session: %s", st.SessionID)
	}
	if !st.StartedAt.IsZero() {
		session += " | Started: " + st.StartedAt.Format("2006-01-02 15:04:05")
	}
	pdf.CellFormat(0, 6, session, "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, inv Inventory) {
	e.section(pdf, "Overview")

	c, s := inv.Counts, inv.Stats
	stats := []struct {
		label string
		value string
	}{
		{"Access Points", fmt.Sprintf("%d", c.AccessPoints)},
		{"Clients", fmt.Sprintf("%d", c.Clients)},
		{"Hidden", fmt.Sprintf("%d", c.Hidden)},
		{"Revealed", fmt.Sprintf("%d", c.Revealed)},
		{"Associations", fmt.Sprintf("%d", c.Associations)},
		{"Cached Probes", fmt.Sprintf("%d", c.Probes)},
		{"Management Frames", fmt.Sprintf("%d", s.Management)},
		{"Data Frames", fmt.Sprintf("%d", s.Data)},
		{"Beacons", fmt.Sprintf("%d", s.Beacons)},
		{"Probe Requests", fmt.Sprintf("%d", s.ProbeRequests)},
		{"Dropped", fmt.Sprintf("%d", s.Dropped)},
		{"Malformed", fmt.Sprintf("%d", s.Malformed)},
	}

	for i, stat := range stats {
		x := 10.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetX(x)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 102, 204)
		pdf.CellFormat(35, 7, stat.value, "", 0, "R", false, 0, "")
		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addReveals(pdf *gofpdf.Fpdf, tr func(string) string, reveals []domain.AccessPoint) {
	e.section(pdf, "Revealed Hidden Networks")
	if len(reveals) == 0 {
		e.empty(pdf, "No hidden network was revealed")
		return
	}

	e.tableHeader(pdf, []column{{"BSSID", 38}, {"SSID", 62}, {"Source", 35}, {"Revealed", 55}})
	for i, ap := range reveals {
		if i >= maxRows {
			e.truncated(pdf, len(reveals)-maxRows)
			break
		}
		pdf.CellFormat(38, 7, ap.BSSID.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(62, 7, tr(truncate(ap.DisplaySSID, 32)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, string(ap.RevealSource), "1", 0, "L", false, 0, "")
		pdf.CellFormat(55, 7, ap.RevealedAt.Format("2006-01-02 15:04:05"), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addAccessPoints(pdf *gofpdf.Fpdf, tr func(string) string, aps []domain.AccessPoint) {
	e.section(pdf, "Access Points")
	if len(aps) == 0 {
		e.empty(pdf, "No access point observed")
		return
	}

	e.tableHeader(pdf, []column{{"BSSID", 38}, {"SSID", 44}, {"Ch", 10}, {"RSSI", 13}, {"Security", 28}, {"AKM", 30}, {"WPS", 12}, {"Clients", 15}})
	for i, ap := range aps {
		if i >= maxRows {
			e.truncated(pdf, len(aps)-maxRows)
			break
		}
		wps := "-"
		if ap.WPS.Enabled {
			wps = "yes"
		}
		if ap.Hidden && !ap.SSIDRevealed {
			pdf.SetTextColor(150, 150, 150)
		}
		pdf.CellFormat(38, 7, ap.BSSID.String(), "1", 0, "L", false, 0, "")
		akm := "-"
		if s := ap.RSN.Summary(); s != "" {
			akm = s
		}
		pdf.CellFormat(44, 7, tr(truncate(ap.DisplaySSID, 22)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(10, 7, fmt.Sprintf("%d", ap.Channel), "1", 0, "C", false, 0, "")
		pdf.CellFormat(13, 7, fmt.Sprintf("%d", ap.RSSI), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 7, ap.Encryption.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, truncate(akm, 16), "1", 0, "L", false, 0, "")
		pdf.CellFormat(12, 7, wps, "1", 0, "C", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", len(ap.AssociatedClients)), "1", 1, "C", false, 0, "")
		pdf.SetTextColor(60, 60, 60)
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addClients(pdf *gofpdf.Fpdf, clients []domain.Client) {
	e.section(pdf, "Clients")
	if len(clients) == 0 {
		e.empty(pdf, "No client observed")
		return
	}

	e.tableHeader(pdf, []column{{"MAC", 38}, {"Vendor", 45}, {"RSSI", 15}, {"Access Point", 38}, {"Probes", 18}, {"Last Seen", 36}})
	for i, cl := range clients {
		if i >= maxRows {
			e.truncated(pdf, len(clients)-maxRows)
			break
		}
		ap := "-"
		if cl.APBSSID != nil {
			ap = cl.APBSSID.String()
		}
		pdf.CellFormat(38, 7, cl.MAC.String(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, truncate(cl.Manufacturer, 22), "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", cl.RSSI), "1", 0, "C", false, 0, "")
		pdf.CellFormat(38, 7, ap, "1", 0, "L", false, 0, "")
		pdf.CellFormat(18, 7, fmt.Sprintf("%d", cl.ProbeCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(36, 7, cl.LastSeen.Format("15:04:05"), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

type column struct {
	title string
	width float64
}

func (e *PDFExporter) section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (e *PDFExporter) empty(pdf *gofpdf.Fpdf, msg string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, msg, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func (e *PDFExporter) tableHeader(pdf *gofpdf.Fpdf, cols []column) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 8, c.title, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Arial", "", 8)
}

func (e *PDFExporter) truncated(pdf *gofpdf.Fpdf, n int) {
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("... %d more", n), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 8)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
