// Package complexity scores canonical workflows by size and the kinds of steps they contain.
package complexity

import (
	"github.com/dukex/migromat/pkg/kind"
	"github.com/dukex/migromat/pkg/models"
)

const (
	pointsPerStep   = 10
	loopBonus       = 20
	aiBonus         = 15
	customCodeBonus = 25

	maxScore          = 100
	moderateFromScore = 30
	complexFromScore  = 60
)

// Estimate derives a complexity snapshot from the given steps. It is a pure function.
func Estimate(steps []*models.CanonicalStep) models.Complexity {
	result := models.Complexity{StepsCount: len(steps)}

	for _, step := range steps {
		if step == nil {
			continue
		}

		result.HasLoops = result.HasLoops || kind.Loop.Match(step.Kind)
		result.HasAI = result.HasAI || kind.AI.Match(step.Kind)
		result.HasCustomCode = result.HasCustomCode || kind.CustomCode.Match(step.Kind)
	}

	score := len(steps) * pointsPerStep
	if result.HasLoops {
		score += loopBonus
	}

	if result.HasAI {
		score += aiBonus
	}

	if result.HasCustomCode {
		score += customCodeBonus
	}

	result.Score = min(max(score, 0), maxScore)
	result.Level = LevelFor(result.Score)

	return result
}

// LevelFor maps a score to its level.
func LevelFor(score int) models.ComplexityLevel {
	switch {
	case score < moderateFromScore:
		return models.ComplexitySimple
	case score < complexFromScore:
		return models.ComplexityModerate
	default:
		return models.ComplexityComplex
	}
}
