package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DatasetRefresh announces that the climate dataset was reloaded.
type DatasetRefresh struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	// LatestDate is informational; receivers re-read the store regardless.
	LatestDate string `json:"latest_date,omitempty"`
}

func (d DatasetRefresh) Validate() error {
	if d.Source == "" {
		return errors.New("source is required")
	}
	if d.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	if d.LatestDate != "" {
		if _, err := time.Parse("2006-01-02", d.LatestDate); err != nil {
			return fmt.Errorf("latest_date %q is not yyyy-mm-dd", d.LatestDate)
		}
	}
	return nil
}

func decodeRefresh(payload []byte) (DatasetRefresh, error) {
	var msg DatasetRefresh
	if err := json.Unmarshal(payload, &msg); err != nil {
		return DatasetRefresh{}, fmt.Errorf("decode refresh: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return DatasetRefresh{}, fmt.Errorf("invalid refresh: %w", err)
	}
	return msg, nil
}
