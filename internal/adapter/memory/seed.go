package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"vitals/internal/domain"
)

// seedRecord is one reading of a weight export. Date may be a day string,
// an RFC 3339 timestamp or a unix timestamp.
type seedRecord struct {
	UserID int64   `json:"user_id"`
	Date   any     `json:"date"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

// Seed imports a JSON array of exported readings. Records are applied in
// order, so a later reading replaces an earlier one on the same day.
// Unreadable records are skipped and counted.
func (db *DB) Seed(ctx context.Context, r io.Reader) (imported, skipped int, err error) {
	var records []seedRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, 0, fmt.Errorf("decode seed: %w", err)
	}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return imported, skipped, err
		}
		userID := rec.UserID
		if userID == 0 {
			userID = 1
		}
		legacy := domain.LegacyWeight{Value: rec.Value, Unit: domain.Unit(rec.Unit)}
		if _, err := db.ImportLegacy(ctx, userID, rec.Date, legacy); err != nil {
			log.Debugf("seed: skip record %v: %s", rec, err)
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped, nil
}

// SeedFile runs Seed on the file at path.
func (db *DB) SeedFile(ctx context.Context, path string) (imported, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	return db.Seed(ctx, f)
}
