package season

import (
	"testing"
	"time"

	"github.com/rushteam/nutrikit/core"
)

func TestScoreVegetable(t *testing.T) {
	want := map[time.Month]float64{
		time.January:   0.9,
		time.February:  0.9,
		time.March:     1.2,
		time.April:     1.2,
		time.May:       1.2,
		time.June:      1.3,
		time.July:      1.3,
		time.August:    1.3,
		time.September: 1.1,
		time.October:   1.1,
		time.November:  1.1,
		time.December:  0.9,
	}
	for m, w := range want {
		if got := Score(core.CategoryVegetable, m); got != w {
			t.Errorf("vegetable month %v: got %v, want %v", m, got, w)
		}
	}
}

func TestScoreFruit(t *testing.T) {
	want := map[time.Month]float64{
		time.January:   0.8,
		time.February:  0.8,
		time.March:     1.0,
		time.April:     1.0,
		time.May:       1.0,
		time.June:      1.3,
		time.July:      1.3,
		time.August:    1.3,
		time.September: 1.1,
		time.October:   1.1,
		time.November:  0.8,
		time.December:  0.8,
	}
	for m, w := range want {
		if got := Score(core.CategoryFruit, m); got != w {
			t.Errorf("fruit month %v: got %v, want %v", m, got, w)
		}
	}
}

func TestScoreNeutralCategories(t *testing.T) {
	categories := []core.FoodCategory{
		core.CategoryMeat,
		core.CategoryFish,
		core.CategoryDairy,
		core.CategoryGrain,
		core.CategorySnack,
		core.CategoryBeverage,
		core.CategoryOther,
	}
	for _, c := range categories {
		for m := time.January; m <= time.December; m++ {
			if got := Score(c, m); got != Neutral {
				t.Errorf("category %s month %v: got %v, want %v", c, m, got, Neutral)
			}
		}
	}
}

func TestScoreAt(t *testing.T) {
	at := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	if got := ScoreAt(core.CategoryFruit, at); got != 1.3 {
		t.Errorf("ScoreAt july fruit: got %v, want 1.3", got)
	}
}
