package model

import (
	"fmt"
	"maps"
)

// Feature keys understood by the scoring model. Role and affinity keys are
// composed per role type; the rest are fixed.
const (
	// FeatureRotation carries the normalized-recency value.
	FeatureRotation = "rotation"
	// FeatureGenderMatch is 1 when a slot's soft gender preference matches.
	FeatureGenderMatch = "gender_match"
)

// RoleFeature returns the shared per-role feature key, e.g. "role:lector".
func RoleFeature(roleType string) string {
	return "role:" + roleType
}

// AffinityFeature returns the per-candidate per-role feature key,
// e.g. "affinity:12:lector". These keys are what feedback about one person
// moves without dragging every other candidate of the role along.
func AffinityFeature(candidateID int64, roleType string) string {
	return fmt.Sprintf("affinity:%d:%s", candidateID, roleType)
}

// FeatureVector holds the feature values computed for one (candidate, slot)
// pair. Values are snapshotted into history entries so that later feedback
// replays exactly what was scored.
type FeatureVector map[string]float64

// Clone returns an independent copy.
func (f FeatureVector) Clone() FeatureVector {
	if f == nil {
		return nil
	}
	return maps.Clone(f)
}

// WeightVector maps feature keys to learned weights. Keys are created on
// first write and never deleted; reading a missing key yields 0.
type WeightVector map[string]float64

// Get reads a weight, defaulting missing keys to 0.
func (w WeightVector) Get(key string) float64 {
	return w[key]
}

// Clone returns an independent copy.
func (w WeightVector) Clone() WeightVector {
	if w == nil {
		return WeightVector{}
	}
	return maps.Clone(w)
}

// Dot computes the weighted sum of the feature values. Missing weight keys
// contribute nothing.
func (w WeightVector) Dot(f FeatureVector) float64 {
	var sum float64
	for key, value := range f {
		sum += w[key] * value
	}
	return sum
}
