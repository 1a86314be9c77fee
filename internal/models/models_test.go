package models

import (
	"encoding/json"
	"testing"
)

func TestComposeText(t *testing.T) {
	cases := []struct {
		title, desc, want string
	}{
		{"Stocks rally", "Markets surge.", "Stocks rally Markets surge."},
		{"", "only description", "only description"},
		{"  padded ", "", "padded"},
		{"", "", ""},
	}
	for _, c := range cases {
		if got := ComposeText(c.title, c.desc); got != c.want {
			t.Errorf("ComposeText(%q, %q) = %q, want %q", c.title, c.desc, got, c.want)
		}
	}
}

func TestCategoryMap_Lookup(t *testing.T) {
	m := NewCategoryMap(map[string]string{"1": "World", "3": "Business"})
	if got := m.Lookup("1"); got != "World" {
		t.Errorf("Lookup(1) = %s", got)
	}
	for _, label := range []ClassLabel{"2", "", "business", "01"} {
		if got := m.Lookup(label); got != UnknownCategory {
			t.Errorf("Lookup(%q) = %s, want %s", label, got, UnknownCategory)
		}
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestCategoryMap_isImmutableCopy(t *testing.T) {
	src := map[string]string{"1": "World"}
	m := NewCategoryMap(src)
	src["1"] = "Changed"
	if m.Lookup("1") != "World" {
		t.Error("CategoryMap should not alias its source map")
	}
	names := m.Names()
	names["1"] = "Changed"
	if m.Lookup("1") != "World" {
		t.Error("Names should return a copy")
	}
}

func TestPresentLabel(t *testing.T) {
	if got, ok := PresentLabel("3").(int); !ok || got != 3 {
		t.Errorf("PresentLabel(3) = %#v, want int 3", PresentLabel("3"))
	}
	if got, ok := PresentLabel("sports").(string); !ok || got != "sports" {
		t.Errorf("PresentLabel(sports) = %#v", PresentLabel("sports"))
	}
	if _, ok := PresentLabel("1.5").(string); !ok {
		t.Error("non-integer numeric label should stay a string")
	}
}

func TestPrediction_ResponseJSON(t *testing.T) {
	p := &Prediction{Label: "3", Category: "Business"}
	b, err := json.Marshal(p.Response())
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"predicted_class":3,"category":"Business"}` {
		t.Errorf("got %s", b)
	}

	p = &Prediction{Label: "spam", Category: UnknownCategory}
	b, _ = json.Marshal(p.Response())
	if string(b) != `{"predicted_class":"spam","category":"Unknown"}` {
		t.Errorf("got %s", b)
	}
}
