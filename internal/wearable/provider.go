package wearable

import "context"

// #region provider

// Provider is the daily-metrics supplier. Implementations bridge whatever
// export or sync mechanism feeds the device data; the pipeline only sees this
// interface, so tests substitute a fixture.
//
// All methods return zero values for metrics the device did not record.
// An error means the provider itself failed (permission denied, unreadable
// export), which is terminal for the current run.
type Provider interface {
	Biometrics(ctx context.Context, date string) (Biometrics, error)
	Activity(ctx context.Context, date string) (Activity, error)
	Sleep(ctx context.Context, date string) (SleepData, error)
	Historical(ctx context.Context, days int) (History, error)
}

// #endregion provider
