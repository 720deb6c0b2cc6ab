// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/devblok/vkinit/device"
	"github.com/sirupsen/logrus"
)

// Score is a device fitness result. A disqualified device never wins,
// whatever its limits, and neither does a score that is not positive.
type Score struct {
	value     float64
	reason    string
	qualified bool
}

// Scored is a qualified score of v
func Scored(v float64) Score {
	return Score{value: v, qualified: true}
}

// Disqualified is a device that must not be picked
func Disqualified(reason string) Score {
	return Score{reason: reason}
}

// Value returns the score and whether the device qualified at all
func (s Score) Value() (float64, bool) {
	return s.value, s.qualified
}

// Reason is why the device was disqualified
func (s Score) Reason() string {
	return s.reason
}

// Eligible tells whether the device can be selected
func (s Score) Eligible() bool {
	return s.qualified && s.value > 0
}

// Beats reports whether s replaces best. It has to be strictly
// higher, so among equal scores the first one seen stays.
func (s Score) Beats(best Score) bool {
	if !s.Eligible() {
		return false
	}
	return !best.Eligible() || s.value > best.value
}

func (s Score) String() string {
	if !s.qualified {
		return "disqualified: " + s.reason
	}
	return fmt.Sprintf("%g", s.value)
}

// MarshalText implements encoding.TextMarshaler
func (s Score) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Candidate is a physical device as seen at enumeration time.
type Candidate struct {
	Device        device.PhysicalDevice `json:"-"`
	Index         int
	Properties    device.Properties
	Features      device.Features
	QueueFamilies []device.QueueFamilyProperties
	Queues        QueueFamilySelection
	Score         Score
}

// ScoreCandidate rates c. The base score is the sum of the maximum 2D and 3D
// image dimensions, a device without a graphics queue family is disqualified.
func ScoreCandidate(c *Candidate, cfg SelectionConfiguration) Score {
	if !c.Queues.Found {
		return Disqualified("no graphics queue family")
	}
	for _, feature := range cfg.RequiredFeatures {
		if supported, _ := c.Features.Has(feature); !supported {
			return Disqualified("missing feature " + feature)
		}
	}

	score := float64(c.Properties.Limits.MaxImageDimension2D)
	score += float64(c.Properties.Limits.MaxImageDimension3D)
	if c.Properties.Type == device.TypeDiscreteGPU {
		score += cfg.DiscreteBonus
	}
	return Scored(score)
}

// SelectionReport is every candidate looked at, with its score.
type SelectionReport struct {
	Candidates []Candidate
	Selected   int
}

// Best returns the selected candidate
func (r *SelectionReport) Best() (*Candidate, bool) {
	if r == nil || r.Selected < 0 || r.Selected >= len(r.Candidates) {
		return nil, false
	}
	return &r.Candidates[r.Selected], true
}

// Pick returns the index of the candidate with the strictly highest eligible
// score, the first one wins a tie. -1 when none is eligible.
func Pick(candidates []Candidate) int {
	best := -1
	var bestScore Score
	for i := range candidates {
		if candidates[i].Score.Beats(bestScore) {
			best = i
			bestScore = candidates[i].Score
		}
	}
	return best
}

func validateFeatures(names []string) error {
	var unknown []string
	for _, name := range names {
		if _, known := (device.Features{}).Has(name); !known {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return configurationErrorf("unknown required features: %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(device.FeatureNames, ", "))
	}
	return nil
}

// ListCandidates enumerates the physical devices of instance and snapshots
// their properties, features and queue families. Zero devices is an error.
func ListCandidates(instance device.Instance) ([]Candidate, error) {
	devices, err := Enumerate[device.PhysicalDevice](instance.PhysicalDevices)
	if err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	if len(devices) == 0 {
		return nil, resourceExhaustedf("no compatible device found")
	}

	candidates := make([]Candidate, len(devices))
	for i, pd := range devices {
		families, queues, err := FindQueueFamilies(pd)
		if err != nil {
			return nil, err
		}
		candidates[i] = Candidate{
			Device:        pd,
			Index:         i,
			Properties:    pd.Properties(),
			Features:      pd.Features(),
			QueueFamilies: families,
			Queues:        queues,
		}
	}
	return candidates, nil
}

// SelectPhysicalDevice scores every device visible to instance and picks the best.
// No device at all, or no eligible one, is a resource exhausted error.
func SelectPhysicalDevice(instance device.Instance, cfg SelectionConfiguration, log logrus.FieldLogger) (*SelectionReport, error) {
	if err := validateFeatures(cfg.RequiredFeatures); err != nil {
		return nil, err
	}

	candidates, err := ListCandidates(instance)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		c := &candidates[i]
		c.Score = ScoreCandidate(c, cfg)
		log.WithFields(logrus.Fields{
			"device": c.Properties.Name,
			"type":   c.Properties.Type.String(),
			"score":  c.Score.String(),
		}).Info("scored")
	}

	report := &SelectionReport{
		Candidates: candidates,
		Selected:   Pick(candidates),
	}
	best, ok := report.Best()
	if !ok {
		return report, resourceExhaustedf("no suitable device among %d", len(candidates))
	}
	log.WithField("device", best.Properties.Name).Info("Using GPU")
	return report, nil
}
