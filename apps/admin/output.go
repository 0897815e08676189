package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/escondite/core/bonus"
	"github.com/trezcool/escondite/core/class"
	"github.com/trezcool/escondite/core/level"
	"github.com/trezcool/escondite/core/user"
	exportsvc "github.com/trezcool/escondite/services/export"
)

// render prints v as JSON or YAML, or t as an aligned text table.
func (cli *commandLine) render(v interface{}, t exportsvc.Table) error {
	switch cli.format {
	case "json":
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encoding json")
	case "yaml":
		enc := yaml.NewEncoder(cli.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
		for _, row := range t.Rows {
			_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}
}

func levelsTable(levels []level.Level) exportsvc.Table {
	t := exportsvc.Table{Headers: []string{"Nivel"}}
	for _, l := range levels {
		t.Rows = append(t.Rows, []string{l.Name})
	}
	return t
}

func classesTable(classes []class.Class) exportsvc.Table {
	t := exportsvc.Table{Headers: []string{"ID", "Nombre", "Fecha", "Profesor"}}
	for _, c := range classes {
		t.Rows = append(t.Rows, []string{strconv.Itoa(c.ID), c.Name, c.Date.String(), c.Professor})
	}
	return t
}

func usersTable(users []user.User) exportsvc.Table {
	t := exportsvc.Table{Headers: []string{"Usuario", "Rol"}}
	for _, u := range users {
		t.Rows = append(t.Rows, []string{u.Username, u.Role})
	}
	return t
}

func expiringTable(bonuses []bonus.ExpiringBonus) exportsvc.Table {
	t := exportsvc.Table{Headers: []string{"Alumno", "Recomendador", "Fin del bono", "Días restantes"}}
	for _, b := range bonuses {
		t.Rows = append(t.Rows, []string{b.StudentName, b.RecommenderName, b.ExpiryDate.String(), strconv.Itoa(b.DaysLeft)})
	}
	return t
}
