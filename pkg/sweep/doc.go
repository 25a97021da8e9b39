// Package sweep implements the expiry sweep: a linear pipeline that
// fetches credentials expiring within a window, raises one alert per item
// with a severity derived from the days remaining, and summarizes the run.
//
// Each run starts from a fresh State that is threaded through the three
// stages (fetch, alert, summarize). A failure to alert on one item is
// recorded in State.Errors and never stops the remaining items.
package sweep
