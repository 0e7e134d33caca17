package climate

import (
	"log/slog"

	"climate-server/internal/modules/climate/service"
	"climate-server/internal/mqtt"
)

// AttachRefreshHandler drops the cached date window whenever a dataset
// refresh notice arrives.
func AttachRefreshHandler(sub mqtt.RefreshSubscriber, svc *service.Service, logger *slog.Logger) {
	sub.SetRefreshHandler(func(msg mqtt.DatasetRefresh) error {
		svc.InvalidateWindow()
		logger.Info("date window invalidated",
			"source", msg.Source,
			"published_at", msg.Timestamp,
			"latest_date", msg.LatestDate,
		)
		return nil
	})
}
