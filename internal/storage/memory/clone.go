package memory

import (
	"github.com/Galen-Chu/spiritual-g-code/internal/astro"
	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
)

// Records hold slices; stored and returned values must not share them with callers.

func cloneChartData(c astro.ChartData) astro.ChartData {
	if c == nil {
		return nil
	}
	return append(astro.ChartData(nil), c...)
}

func cloneAspects(a []astro.Aspect) []astro.Aspect {
	if a == nil {
		return nil
	}
	return append([]astro.Aspect(nil), a...)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneNatalChart(c astro.NatalChart) astro.NatalChart {
	c.ChartData = cloneChartData(c.ChartData)
	c.KeyAspects = cloneAspects(c.KeyAspects)
	return c
}

func cloneNatalChartRecord(r *domain.NatalChartRecord) *domain.NatalChartRecord {
	out := *r
	out.Chart = cloneNatalChart(r.Chart)
	return &out
}

func cloneDailyGCode(g *domain.DailyGCode) *domain.DailyGCode {
	out := *g
	out.Transits.Planets = cloneChartData(g.Transits.Planets)
	out.Transits.Aspects = cloneAspects(g.Transits.Aspects)
	out.Transits.NodeAspects = cloneAspects(g.Transits.NodeAspects)
	out.Transits.NatalChart = cloneNatalChart(g.Transits.NatalChart)
	out.Interpretation.Themes = cloneStrings(g.Interpretation.Themes)
	out.Interpretation.PracticalGuidance = cloneStrings(g.Interpretation.PracticalGuidance)
	return &out
}
