package stats

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {

	nan := math.NaN()

	type subTest struct {
		name     string
		values   []float64
		expected float64
	}

	subTests := []subTest{
		{"odd", []float64{3, 1, 2}, 2},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"nan-skipped", []float64{1, nan, 3}, 2},
		{"all-nan", []float64{nan, nan}, nan},
		{"empty", nil, nan},
	}
	for _, subTest := range subTests {
		t.Run(subTest.name, func(t *testing.T) {
			actual := Median(subTest.values)
			if math.IsNaN(subTest.expected) {
				if !math.IsNaN(actual) {
					t.Errorf("Got %v, expected NaN", actual)
				}
				return
			}
			if actual != subTest.expected {
				t.Errorf("Got %v, expected %v", actual, subTest.expected)
			}
		})
	}
}

func TestRollingMedian(t *testing.T) {

	values := []float64{1, 2, 3, 10, 3}
	expected := []float64{1, 1.5, 2, 3, 3}

	actual := RollingMedian(values, 3)
	if len(actual) != len(expected) {
		t.Fatalf("Got %d values, expected %d", len(actual), len(expected))
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("At index %d got %v, expected %v", i, actual[i], expected[i])
		}
	}
}

func TestRollingMedianSkipsNaN(t *testing.T) {

	nan := math.NaN()
	actual := RollingMedian([]float64{nan, 2, nan, nan, nan}, 3)

	if !math.IsNaN(actual[0]) {
		t.Errorf("Got %v at index 0, expected NaN", actual[0])
	}
	if actual[1] != 2 || actual[2] != 2 || actual[3] != 2 {
		t.Errorf("Got %v, expected the single valid value to carry through each window", actual)
	}
	if !math.IsNaN(actual[4]) {
		t.Errorf("Got %v at index 4, expected NaN once no valid value remains in the window", actual[4])
	}
}

func TestDiff(t *testing.T) {

	actual := Diff([]float64{1, 3, 2})
	if !math.IsNaN(actual[0]) {
		t.Errorf("Got %v at index 0, expected NaN", actual[0])
	}
	if actual[1] != 2 || actual[2] != -1 {
		t.Errorf("Got %v, expected [NaN 2 -1]", actual)
	}
}
