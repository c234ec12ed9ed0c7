package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/evcurve/core/curve"
)

// WriteJSON writes the curve points to w in JSON format.
func WriteJSON(w io.Writer, c curve.Curve) error {
	enc := json.NewEncoder(w)
	return enc.Encode(c)
}

// WriteCSV writes the curve to w in CSV format with a header row.
// Consumption keeps two fraction digits, matching the line output.
func WriteCSV(w io.Writer, c curve.Curve) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"speed_kmh", "kwh_per_100km"}); err != nil {
		return err
	}
	for _, p := range c {
		rec := []string{
			strconv.Itoa(p.SpeedKmh),
			strconv.FormatFloat(p.KWhPer100Km, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
