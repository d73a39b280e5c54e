// ABOUTME: CSV contact importer
// ABOUTME: Detects name, phone and email columns from a header row and builds clients
package sync

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/harperreed/brokerdesk/models"
)

// ErrUnparseableCSV is returned when the header row has no name column.
var ErrUnparseableCSV = errors.New("could not find a name column in CSV")

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

type csvColumns struct {
	name  int
	phone int
	email int
}

// ParseCSV turns CSV text into clients. Fields are split on bare commas, so a
// quoted value containing a comma is split as well. Text with fewer than two
// lines produces no clients and no error. Rows without a name are dropped.
func ParseCSV(text string, now time.Time) ([]models.Client, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return []models.Client{}, nil
	}

	cols, err := detectColumns(lines[0])
	if err != nil {
		return nil, err
	}

	stamp := now.UnixMilli()
	clients := make([]models.Client, 0, len(lines)-1)
	for i, line := range lines[1:] {
		fields := splitCSVLine(line)

		name := field(fields, cols.name)
		if name == "" {
			continue
		}

		clients = append(clients, models.Client{
			ID:           fmt.Sprintf("csv_%d_%d", stamp, i),
			Name:         name,
			Phone:        field(fields, cols.phone),
			Email:        field(fields, cols.email),
			ImportedFrom: models.SourceCSV,
		})
	}

	return clients, nil
}

func detectColumns(header string) (csvColumns, error) {
	cols := csvColumns{name: -1, phone: -1, email: -1}
	for i, h := range strings.Split(header, ",") {
		h = nonAlnum.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "")

		if cols.name < 0 && (strings.Contains(h, "name") || h == "contact") {
			cols.name = i
		}
		if cols.phone < 0 && (strings.Contains(h, "phone") || strings.Contains(h, "mobile") || strings.Contains(h, "cell")) {
			cols.phone = i
		}
		if cols.email < 0 && strings.Contains(h, "email") {
			cols.email = i
		}
	}

	if cols.name < 0 {
		return cols, ErrUnparseableCSV
	}
	return cols, nil
}

func splitCSVLine(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, `"`)
		p = strings.TrimSuffix(p, `"`)
		parts[i] = p
	}
	return parts
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}
