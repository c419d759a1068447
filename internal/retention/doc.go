// Package retention ages out recorded segments. The daily sweep is the
// authoritative path that reconciles disk, object storage, and the
// transcript catalog; the local valve is a blunt mtime-based guard that
// keeps the recording volume from filling between sweeps.
package retention
