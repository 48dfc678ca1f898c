// Package collector schedules portal updates and exposes them as Prometheus metrics.
//
// WaterCollector drives an Updater (the suez client) from a background
// goroutine. It polls every refresh_interval, but once a snapshot with a
// real reading for yesterday has been obtained, further polls are skipped
// until the next Europe/Paris day: the portal publishes once per night.
// Failed polls are retried earlier with exponential backoff, capped at the
// refresh interval. Invalid credentials are not retried early.
//
// Sensor values come from the explicit Sensors table and are held when an
// update returns only the zero placeholder for yesterday.
//
// The collector exposes the following metrics:
//   - suez_water_sensor_m3{counter_id,sensor,state_class}
//   - suez_water_daily_m3{counter_id,period,day,kind}: current and previous month
//   - suez_water_monthly_m3{counter_id,month,year}: yearly history
//   - suez_water_uptodate{counter_id}
//   - up{provider}
//   - suez_water_exporter_scrape_duration_seconds{provider}
//   - suez_water_exporter_scrape_errors_total{provider,reason}
//   - suez_water_exporter_last_scrape_timestamp_seconds{provider}
//   - suez_water_exporter_build_info
//
// Example usage:
//
//	client, _ := suez.NewClient(opts)
//	c := collector.NewWaterCollector(client, cfg, log)
//	prometheus.MustRegister(c)
//	c.StartBackgroundRefresh(ctx)
package collector
