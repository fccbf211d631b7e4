package embops

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV exports feature vectors as a CSV table with one column per
// statistic and dimension. All vectors must share the same dimension.
func WriteCSV(w io.Writer, feats []*FeatureVector) error {
	if len(feats) == 0 {
		return nil
	}
	dim := len(feats[0].Mean)
	header := make([]string, 0, 2+4*dim)
	header = append(header, "id", "n")
	for _, stat := range []string{"mean", "std", "min", "max"} {
		for d := 0; d < dim; d++ {
			header = append(header, fmt.Sprintf("%s_%d", stat, d))
		}
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to export feature table: %w", err)
	}
	for _, fv := range feats {
		if len(fv.Mean) != dim {
			return fmt.Errorf(
				"failed to export feature table: vector %s has dimension %d, expected %d",
				fv.ID, len(fv.Mean), dim)
		}
		row := make([]string, 0, len(header))
		row = append(row, fv.ID, strconv.Itoa(fv.N))
		for _, values := range [][]float64{fv.Mean, fv.Std, fv.Min, fv.Max} {
			for _, v := range values {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to export feature table: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to export feature table: %w", err)
	}
	return nil
}
