package animator

import "math/rand"

// settings collects construction options shared by every animator kind.
type settings struct {
	maxDistance float32
	profiles    []Profile
	rnd         *rand.Rand
}

// AnimatorBuilderOption is a functional option for configuring an Animator during construction.
type AnimatorBuilderOption func(*settings)

// WithMaxDistance is an option builder that limits animation to instances within d of the camera.
//
// Parameters:
//   - d: the maximum camera distance
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the max distance option
func WithMaxDistance(d float32) AnimatorBuilderOption {
	return func(s *settings) {
		s.maxDistance = d
	}
}

// WithProfiles is an option builder that seeds the per-object-type profile table.
// Slots beyond the given profiles are filled with the animator's default on the first Update.
//
// Parameters:
//   - profiles: one profile per object type, in objectID order
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the profiles option
func WithProfiles(profiles ...Profile) AnimatorBuilderOption {
	return func(s *settings) {
		s.profiles = profiles
	}
}

// WithRand is an option builder that sets the random source used to pick targets.
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - AnimatorBuilderOption: a function that applies the random source option
func WithRand(r *rand.Rand) AnimatorBuilderOption {
	return func(s *settings) {
		s.rnd = r
	}
}
