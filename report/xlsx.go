/*
Copyright © 2025 the saltchem authors.
This file is part of saltchem.

saltchem is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

saltchem is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with saltchem.  If not, see <http://www.gnu.org/licenses/>.
*/

package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/tealeg/xlsx"
)

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

// sheetName returns name with the characters that are not allowed in
// sheet names replaced and its length limited.
func sheetName(name string) string {
	name = strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-").Replace(name)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// uniqueSheetName returns sheetName(name), numbered when that name is
// already in use. Sheet names are compared case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	base := sheetName(name)
	n := base
	for i := 2; used[strings.ToLower(n)]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		b := base
		if len(b)+len(suffix) > maxSheetName {
			b = b[:maxSheetName-len(suffix)]
		}
		n = b + suffix
	}
	used[strings.ToLower(n)] = true
	return n
}

// Workbook returns a workbook with one sheet per table.
func Workbook(tables ...*Table) (*xlsx.File, error) {
	f := xlsx.NewFile()
	used := make(map[string]bool)
	for _, t := range tables {
		sheet, err := f.AddSheet(uniqueSheetName(t.Name, used))
		if err != nil {
			return nil, fmt.Errorf("report: adding sheet for %s: %w", t.Name, err)
		}
		header := sheet.AddRow()
		header.AddCell().SetString("Timestep")
		for _, c := range t.Columns {
			header.AddCell().SetString(c)
		}
		for i, row := range t.Values {
			r := sheet.AddRow()
			r.AddCell().SetInt(int(t.Timesteps[i]))
			for _, v := range row {
				cell := r.AddCell()
				if !math.IsNaN(v) {
					cell.SetFloat(v)
				}
			}
		}
	}
	return f, nil
}

// WriteXLSX writes the tables to a workbook file.
func WriteXLSX(path string, tables ...*Table) error {
	f, err := Workbook(tables...)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("report: problem saving workbook: %w", err)
	}
	return nil
}
