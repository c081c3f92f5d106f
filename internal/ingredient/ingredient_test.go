package ingredient

import (
	"testing"

	"pantrykeeper/internal/models"
)

func TestParseLineCascade(t *testing.T) {
	tests := []struct {
		in   string
		want Line
	}{
		{"Bloemkool 600 g", Line{Quantity: 600, Unit: "g", ProductName: "Bloemkool"}},
		{"Ui 1", Line{Quantity: 1, Unit: "pcs", ProductName: "Ui"}},
		{"Peper", Line{Quantity: 1, Unit: "pinch", ProductName: "Peper"}},
		{"2 cups flour", Line{Quantity: 2, Unit: "cup", ProductName: "flour"}},
		{"3 eggs", Line{Quantity: 3, Unit: "pcs", ProductName: "eggs"}},
		{"3 large eggs", Line{Quantity: 3, Unit: "pcs", ProductName: "large eggs"}},
		{"500gr gehakt", Line{Quantity: 500, Unit: "g", ProductName: "gehakt"}},
		{"2 eetlepels olijfolie", Line{Quantity: 2, Unit: "tbsp", ProductName: "olijfolie"}},
		{"1/2 tsp of the salt", Line{Quantity: 0.5, Unit: "tsp", ProductName: "salt"}},
		{"1.5 l melk (halfvol)", Line{Quantity: 1.5, Unit: "l", ProductName: "melk"}},
		{"het brood", Line{Quantity: 1, Unit: "pinch", ProductName: "brood"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLine(tt.in)
			if !ok {
				t.Fatalf("ParseLine(%q) did not parse", tt.in)
			}
			got.Source = ""
			if got != tt.want {
				t.Errorf("ParseLine(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	got := Split("2 cups flour, 3 eggs;\nPeper\r\n ,, Ui 1")
	want := []string{"2 cups flour", "3 eggs", "Peper", "Ui 1"}
	if len(got) != len(want) {
		t.Fatalf("Split = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizeUnit(t *testing.T) {
	tests := map[string]string{
		"cups": "cup", "TBS": "tbsp", "el": "tbsp", "theelepel": "tsp",
		"gram": "g", "kgs": "kg", "milliliters": "ml", "cls": "cl",
		"liter": "l", "pieces": "pcs", "pinches": "pinch",
	}
	for in, want := range tests {
		if got, ok := NormalizeUnit(in); !ok || got != want {
			t.Errorf("NormalizeUnit(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := NormalizeUnit("handful"); ok {
		t.Error("unknown unit reported as known")
	}
}

func TestFindProduct(t *testing.T) {
	products := []models.Product{
		{ID: "1", Name: "Basil"},
		{ID: "2", Name: "Red onion"},
		{ID: "3", Name: "Parmesan cheese"},
		{ID: "4", Name: "gemalen komijn"},
	}
	tests := []struct {
		term string
		want string
		ok   bool
	}{
		{"basil", "1", true},
		{"onion", "2", true},
		{"grated parmesan cheese please", "3", true},
		{"fresh chopped basil leaves", "1", true},
		{"komijn", "4", true},
		{"gedroogde komijn", "4", true},
		{"saffron", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := FindProduct(tt.term, products)
			if ok != tt.ok || got.ID != tt.want {
				t.Errorf("FindProduct(%q) = %q, %v; want %q, %v", tt.term, got.ID, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFindProductPrefersExact(t *testing.T) {
	products := []models.Product{{ID: "1", Name: "Rice vinegar"}, {ID: "2", Name: "rice"}}
	if got, _ := FindProduct("Rice", products); got.ID != "2" {
		t.Errorf("exact match should win over containment, got %q", got.ID)
	}
}

func TestAnalyze(t *testing.T) {
	products := []models.Product{{ID: "1", Name: "Bloemkool"}, {ID: "2", Name: "Ui"}}
	res := Analyze("Bloemkool 600 g, Ui 1, Peper, ui 2", products)

	if len(res.Matched) != 3 {
		t.Fatalf("matched = %d, want 3", len(res.Matched))
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ProductName != "Peper" {
		t.Errorf("skipped = %+v, want Peper", res.Skipped)
	}
	ings := res.Ingredients()
	if len(ings) != 2 {
		t.Fatalf("ingredients = %+v, want one per product", ings)
	}
	if ings[0].ProductID != "1" || ings[0].Quantity != 600 || ings[0].Unit != "g" {
		t.Errorf("first ingredient = %+v", ings[0])
	}
}
