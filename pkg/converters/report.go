package converters

import (
	"fmt"
	"math"
)

// Report summarizes how faithfully a workflow was mapped onto a target platform.
type Report struct {
	Success    bool     `json:"success"`
	Mapped     int      `json:"mapped_steps"`
	Unmapped   int      `json:"unmapped_steps"`
	Dropped    int      `json:"dropped_steps"`
	Warnings   []string `json:"warnings"`
	Confidence int      `json:"confidence"`
}

func newReport() *Report {
	return &Report{Warnings: make([]string, 0)}
}

func (r *Report) mapped() {
	r.Mapped++
}

func (r *Report) unmapped(format string, args ...any) {
	r.Unmapped++
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) dropped(format string, args ...any) {
	r.Dropped++
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) finish() *Report {
	r.Success = true
	r.Confidence = 100

	if total := r.Mapped + r.Unmapped; total > 0 {
		r.Confidence = int(math.Round(float64(r.Mapped) / float64(total) * 100))
	}

	return r
}
