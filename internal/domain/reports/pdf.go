package reports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// AttendancePDF renders the attendance report as a simple tabular PDF.
func AttendancePDF(from, to time.Time, rows []AttendanceRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Attendance Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", from.Format(time.DateOnly), to.Format(time.DateOnly)))
	pdf.Ln(10)

	widths := []float64{28, 60, 26, 26, 26, 20, 20, 26}
	headers := []string{"Emp No", "Employee", "Date", "Login", "Logout", "Wknd", "Hol", "Status"}

	pdf.SetFont("Helvetica", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		logout := "-"
		if row.LogoutTime != nil {
			logout = row.LogoutTime.Format("15:04")
		}
		cells := []string{
			row.EmployeeNo,
			row.EmployeeName,
			row.Date.Format(time.DateOnly),
			row.LoginTime.Format("15:04"),
			logout,
			yesNo(row.IsWeekend),
			yesNo(row.IsPublicHoliday),
			row.Status,
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yesNo(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}
