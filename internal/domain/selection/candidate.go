// Package selection picks a fixed-size, maximally diverse subset of
// fingerprinted candidates.
package selection

import (
	"github.com/kailas-cloud/smartsample/internal/domain/fingerprint"
)

// Candidate is one selectable item. Order fixes its position in the walk;
// candidates with equal Order keep their input order.
type Candidate struct {
	ID          string
	Order       int
	Fingerprint fingerprint.Fingerprint
}

// Keyer maps a fingerprint to a non-negative bucket key.
type Keyer interface {
	BucketKey(fp fingerprint.Fingerprint) (int, error)
}

// Labeler renders a bucket key for reports. Optional for keyers.
type Labeler interface {
	BucketLabel(key int) string
}

// LayoutKeyer adapts a fingerprint layout to Keyer and Labeler.
type LayoutKeyer struct {
	Layout fingerprint.Layout
}

// BucketKey implements Keyer.
func (k LayoutKeyer) BucketKey(fp fingerprint.Fingerprint) (int, error) {
	return k.Layout.BucketKey(fp)
}

// BucketLabel implements Labeler.
func (k LayoutKeyer) BucketLabel(key int) string {
	return fingerprint.BucketLabel(key)
}
