package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/KmSasikumar/EcommProductRecommender2/pkg/models"
)

// BaselineLoader reads the historical interaction dataset that retraining
// blends with the live log. The file is optional; a missing or unreadable
// baseline is a warning, not a failure, since training can proceed on new
// interactions alone.
type BaselineLoader struct {
	path   string
	logger *logrus.Logger
}

func NewBaselineLoader(path string, logger *logrus.Logger) *BaselineLoader {
	return &BaselineLoader{path: path, logger: logger}
}

// Load returns the baseline rows, or nil when no baseline is available.
func (l *BaselineLoader) Load() []models.WeightedInteraction {
	f, err := os.Open(l.path)
	if err != nil {
		l.logger.WithError(err).WithField("path", l.path).
			Warn("Baseline dataset not available, training on new interactions only; long-term patterns may be lost")
		return nil
	}
	defer f.Close()

	rows, err := ParseWeightedCSV(f)
	if err != nil {
		l.logger.WithError(err).WithField("path", l.path).
			Warn("Failed to parse baseline dataset, training on new interactions only")
		return nil
	}

	l.logger.WithFields(logrus.Fields{
		"path": l.path,
		"rows": len(rows),
	}).Info("Baseline dataset loaded")

	return rows
}

// ParseWeightedCSV reads user_id,item_id,interaction_score rows. A header
// row is detected and skipped. Training uploads and the baseline file share
// this format.
func ParseWeightedCSV(r io.Reader) ([]models.WeightedInteraction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	var rows []models.WeightedInteraction
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}

		weight, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			if first {
				first = false
				continue // header row
			}
			return nil, fmt.Errorf("invalid interaction score %q: %w", record[2], err)
		}
		first = false

		rows = append(rows, models.WeightedInteraction{
			UserID: record[0],
			ItemID: record[1],
			Weight: weight,
		})
	}

	return rows, nil
}
