package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"board-finder/internal/domain/entity"
)

// DistanceStats сводка по минимальным расстояниям
type DistanceStats struct {
	Count int     `yaml:"count"`
	Min   int     `yaml:"min"`
	Max   int     `yaml:"max"`
	Mean  float64 `yaml:"mean"`
}

func (d *DistanceStats) add(v int) {
	if d.Count == 0 || v < d.Min {
		d.Min = v
	}
	if v > d.Max {
		d.Max = v
	}
	d.Mean += (float64(v) - d.Mean) / float64(d.Count+1)
	d.Count++
}

// CalibrationReport показывает, как действующий порог разделяет свои и чужие кадры
type CalibrationReport struct {
	Threshold    int           `yaml:"threshold"`
	Samples      int           `yaml:"samples"`
	Frames       int           `yaml:"frames"`
	Unusable     int           `yaml:"unusable"`
	Positive     DistanceStats `yaml:"positive"` // ближайший кадр того же образца
	Negative     DistanceStats `yaml:"negative"` // ближайший кадр другого образца
	FalseAccepts int           `yaml:"false_accepts"`
	FalseRejects int           `yaml:"false_rejects"`
	Margin       int           `yaml:"margin"` // negative.min - positive.max
}

type labelled struct {
	sample string
	fp     entity.Fingerprint
}

// Calibrate считает отпечатки размеченных групп кадров (образец -> кадры)
// и для каждого кадра находит ближайший кадр своего образца (без себя) и
// ближайший кадр чужого. Нужно не меньше двух образцов.
func (s *CatalogService) Calibrate(ctx context.Context, groups map[string][][]byte) (*CalibrationReport, error) {
	if len(groups) < 2 {
		return nil, &entity.ValidationError{Field: "samples", Reason: "need at least two"}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	report := &CalibrationReport{Threshold: s.matcher.Threshold, Samples: len(names)}
	var prints []labelled
	for _, name := range names {
		for i, data := range groups[name] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			report.Frames++
			img, err := s.normalizer.Decode(data)
			if err != nil {
				slog.Warn("Skipping calibration frame", "sample", name, "index", i, "err", err)
				report.Unusable++
				continue
			}
			fp, err := s.fingerprinter.Fingerprint(img)
			if err != nil {
				report.Unusable++
				continue
			}
			prints = append(prints, labelled{sample: name, fp: fp})
		}
	}
	if len(prints) == 0 {
		return nil, fmt.Errorf("calibrate: %w", entity.ErrEmptyFingerprintSet)
	}

	for i, p := range prints {
		own, other := math.MaxInt, math.MaxInt
		for j, q := range prints {
			if i == j {
				continue
			}
			d := p.fp.Distance(q.fp)
			if q.sample == p.sample {
				own = min(own, d)
			} else {
				other = min(other, d)
			}
		}
		if own != math.MaxInt {
			report.Positive.add(own)
			if own > report.Threshold {
				report.FalseRejects++
			}
		}
		if other != math.MaxInt {
			report.Negative.add(other)
			if other <= report.Threshold {
				report.FalseAccepts++
			}
		}
	}
	report.Margin = report.Negative.Min - report.Positive.Max

	return report, nil
}
