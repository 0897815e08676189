// Package exportsvc writes record listings as CSV or XLSX files.
package exportsvc

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/escondite/core/bonus"
	"github.com/trezcool/escondite/core/payment"
	"github.com/trezcool/escondite/core/student"
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format, expected .csv or .xlsx")

// Table is a header row followed by data rows of the same width.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".xlsx":
		return XLSX, nil
	default:
		return "", ErrUnknownFormat
	}
}

// WriteFile exports t to path, in the format given by its extension.
func WriteFile(path string, t Table) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err = Write(f, format, t); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "closing export file")
}

func Write(w io.Writer, format Format, t Table) error {
	switch format {
	case CSV:
		return writeCSV(w, t)
	case XLSX:
		return writeXLSX(w, t)
	default:
		return ErrUnknownFormat
	}
}

func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return errors.Wrap(err, "writing csv rows")
	}
	return nil
}

func writeXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()

	sheet := f.GetSheetName(0)
	if t.Sheet != "" {
		if err := f.SetSheetName(sheet, t.Sheet); err != nil {
			return errors.Wrap(err, "naming sheet")
		}
		sheet = t.Sheet
	}

	for i, row := range append([][]string{t.Headers}, t.Rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err = f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", i+1)
		}
	}
	if len(t.Headers) > 0 {
		if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
			last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
			_ = f.SetCellStyle(sheet, "A1", last, style)
		}
	}
	return errors.Wrap(f.Write(w), "writing xlsx")
}

// ReadXLSX returns the rows of the first sheet, header included.
func ReadXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening xlsx")
	}
	//goland:noinspection GoUnhandledErrorResult
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}

func Rewards(views []bonus.RewardView) Table {
	t := Table{
		Sheet:   "Recompensas",
		Headers: []string{"Recomendador", "Alumno nuevo", "Nombre de la recompensa", "Meses de recompensa", "Fecha de inicio bono"},
		Rows:    make([][]string, 0, len(views)),
	}
	for _, v := range views {
		t.Rows = append(t.Rows, []string{v.RecommenderName, v.NewStudentName, v.Name, strconv.Itoa(v.Months), v.AwardDate.String()})
	}
	return t
}

func Students(students []student.Student) Table {
	t := Table{
		Sheet:   "Alumnos",
		Headers: []string{"Nombre", "Edad", "Nivel"},
		Rows:    make([][]string, 0, len(students)),
	}
	for _, s := range students {
		t.Rows = append(t.Rows, []string{s.Name, strconv.Itoa(s.Age), s.Level})
	}
	return t
}

func Payments(payments []payment.Payment) Table {
	t := Table{
		Sheet:   "Pagos",
		Headers: []string{"ID", "Alumno", "Cantidad", "Fecha", "Método", "Notas"},
		Rows:    make([][]string, 0, len(payments)),
	}
	for _, p := range payments {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(p.ID),
			p.StudentName,
			strconv.FormatFloat(p.Amount, 'f', 2, 64),
			p.Date.String(),
			p.Method.String,
			p.Notes.String,
		})
	}
	return t
}
