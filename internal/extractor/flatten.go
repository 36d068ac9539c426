package extractor

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

func flattenPlain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// flattenPDF rebuilds text lines from the positioned fragments of each
// page. Fragments sharing a row are joined with single spaces, which
// is enough for the strict tier to see "Name   Code" column layouts as
// one line.
func flattenPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			// A single undecodable page should not sink the
			// document; later tiers may still find rows.
			continue
		}
		for _, row := range rows {
			var parts []string
			for _, text := range row.Content {
				if s := strings.TrimSpace(text.S); s != "" {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				sb.WriteString(strings.Join(parts, " "))
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String(), nil
}
