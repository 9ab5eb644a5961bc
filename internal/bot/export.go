package bot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"winnerbot/internal/store"
	tghelpers "winnerbot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// csvHeader is the fixed column order of the export file.
var csvHeader = []string{"id", "product_name", "handle", "phone_number", "created_at"}

// EncodeWinnersCSV renders the winner table as CSV. Missing phone numbers
// become empty cells, timestamps use RFC 3339.
func EncodeWinnersCSV(winners []store.Winner) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, winner := range winners {
		phone := ""
		if winner.PhoneNumber.Valid {
			phone = winner.PhoneNumber.String
		}
		record := []string{
			strconv.FormatInt(winner.ID, 10),
			winner.ProductName,
			winner.Handle,
			phone,
			winner.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (a *App) handleExportWinners(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	winners, err := a.store.Winners.ExportAll(ctx)
	if err != nil {
		return err
	}
	if len(winners) == 0 {
		return tghelpers.SendText(c, msgExportEmpty)
	}
	data, err := EncodeWinnersCSV(winners)
	if err != nil {
		return err
	}
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: fmt.Sprintf("winners_%s.csv", time.Now().UTC().Format("20060102_150405")),
		MIME:     "text/csv",
	}
	return tghelpers.SendDocument(c, doc)
}
