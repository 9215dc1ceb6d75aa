// Package upload parses uploaded conversation CSVs into model
// records.
package upload

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/convoeval/internal/model"
)

// Column aliases, first present wins.
var (
	idAliases    = []string{"conversation_id", "id"}
	titleAliases = []string{"conversation_title", "title"}
	textAliases  = []string{"conversation", "conversation_text"}
)

// ParseCSV reads conversation rows from r. Header names are matched
// case-insensitively against known aliases; the first matching alias
// wins per column. Rows without an ID get conv_<row>, rows without a
// title get the default title, and text is NFC-normalized. Rows with
// blank text are still returned (the processor decides to skip them).
func ParseCSV(r io.Reader) ([]model.Conversation, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("upload: empty CSV")
	}
	if err != nil {
		return nil, eris.Wrap(err, "upload: read header")
	}

	idCol := findColumn(header, idAliases)
	titleCol := findColumn(header, titleAliases)
	textCol := findColumn(header, textAliases)
	if textCol < 0 {
		return nil, eris.Errorf("upload: no conversation text column found (want one of %s)", strings.Join(textAliases, ", "))
	}

	var convs []model.Conversation
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "upload: read row %d", row+1)
		}
		row++

		conv := model.Conversation{
			ID:    cell(record, idCol),
			Title: cell(record, titleCol),
			Text:  norm.NFC.String(cell(record, textCol)),
		}
		if conv.ID == "" {
			conv.ID = fmt.Sprintf("conv_%d", row)
		}
		if conv.Title == "" {
			conv.Title = model.DefaultTitle
		}
		convs = append(convs, conv)
	}

	return convs, nil
}

// findColumn returns the index of the first alias present in the
// header, or -1.
func findColumn(header []string, aliases []string) int {
	for _, alias := range aliases {
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), alias) {
				return i
			}
		}
	}
	return -1
}

func cell(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}
