package catalog

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/ondcsearch/internal/domain"
	"github.com/kailas-cloud/ondcsearch/internal/domain/product"
)

func TestParseItems_Envelopes(t *testing.T) {
	item := `{"id": "A", "item_details": {"descriptor": {"name": "Ghee"}}}`
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare list", `[` + item + `]`, 1},
		{"data key", `{"data": [` + item + `,` + item + `]}`, 2},
		{"response.data", `{"response": {"data": [` + item + `]}}`, 1},
		{"empty list", `[]`, 0},
		{"whitespace", "  \n[" + item + "]\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, skipped, err := ParseItems([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if skipped != 0 {
				t.Errorf("skipped = %d", skipped)
			}
			if len(items) != tt.want {
				t.Fatalf("got %d items, want %d", len(items), tt.want)
			}
			if tt.want > 0 && string(items[0].ID) != `"A"` {
				t.Errorf("items[0].ID = %s", items[0].ID)
			}
		})
	}
}

func TestParseItems_SkipsUndecodable(t *testing.T) {
	items, skipped, err := ParseItems([]byte(`[{"id": "A"}, "junk", 42, {"id": "B"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || skipped != 2 {
		t.Errorf("items = %d, skipped = %d", len(items), skipped)
	}
}

func TestParseItems_MistypedFieldsKeepItem(t *testing.T) {
	body := `{"data": [
		{"id": "A", "item_details": {"descriptor": {"name": 12345, "brand": "Amul"}, "price": 120}},
		{"id": "B", "item_details": {"descriptor": {"name": "Cow Ghee"}}, "provider_details": {"id": 42, "descriptor": {"name": ["x"]}}},
		{"id": "C", "item_details": {"descriptor": "Green Tea", "price": "150"}},
		{"id": "D", "item_details": {"descriptor": {"name": "Basmati"}}}
	]}`

	items, skipped, err := ParseItems([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 4 || skipped != 0 {
		t.Fatalf("items = %d, skipped = %d, want 4 and 0", len(items), skipped)
	}

	tests := []struct {
		id        string
		name      string
		provider  string
		price     float64
		malformed []string
	}{
		{"A", product.UnknownName, "", 120, []string{"descriptor.name"}},
		{"B", "Cow Ghee", "42", 0, []string{"provider_details.descriptor.name"}},
		{"C", product.UnknownName, "", 150, []string{"item_details.descriptor"}},
		{"D", "Basmati", "", 0, nil},
	}
	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			it, bad, err := product.FromCatalog(&items[i])
			if err != nil {
				t.Fatalf("FromCatalog: %v", err)
			}
			if it.ID != tt.id || it.Name != tt.name || it.ProviderID != tt.provider || it.Price != tt.price {
				t.Errorf("item = {id %q, name %q, provider %q, price %g}", it.ID, it.Name, it.ProviderID, it.Price)
			}
			if len(bad) != len(tt.malformed) {
				t.Fatalf("malformed = %v, want %v", bad, tt.malformed)
			}
			for j := range bad {
				if bad[j] != tt.malformed[j] {
					t.Errorf("malformed = %v, want %v", bad, tt.malformed)
				}
			}
		})
	}
}

func TestParseItems_Malformed(t *testing.T) {
	for _, body := range []string{``, `{"data": {"id": "A"}}`, `{"results": []}`, `"text"`, `not json`} {
		if _, _, err := ParseItems([]byte(body)); !errors.Is(err, domain.ErrMalformedPayload) {
			t.Errorf("ParseItems(%q) error = %v, want ErrMalformedPayload", body, err)
		}
	}
}

func TestParseCategories_Envelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"trpc batch", `[{"result": {"data": {"json": {"categories": [{"id": "c1", "name": "Tea"}]}}}}]`},
		{"bare list", `[{"id": "c1", "name": "Tea"}]`},
		{"data key", `{"data": [{"id": "c1", "name": "Tea"}]}`},
		{"categories key", `{"categories": [{"id": "c1", "name": "Tea"}]}`},
		{"result.data", `{"result": {"data": [{"id": "c1", "name": "Tea"}]}}`},
		{"single procedure", `{"category.list": {"result": {"data": [{"id": "c1", "name": "Tea"}]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cats, err := ParseCategories([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cats) != 1 || cats[0].ID != "c1" || cats[0].Name != "Tea" {
				t.Errorf("categories = %+v", cats)
			}
		})
	}
}

func TestParseCategories_Aliases(t *testing.T) {
	body := `{"data": [
		{"categoryId": 7, "categoryName": "Rice", "imageUrl": "r.png", "count": "5", "description": "All rice"},
		{"id": "x", "name": "Snacks", "image": "s.png", "item_count": 3},
		{"title": "Misc"},
		"ignored"
	]}`
	cats, err := ParseCategories([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("got %d categories, want 3", len(cats))
	}
	if cats[0].ID != "7" || cats[0].Name != "Rice" || cats[0].Image != "r.png" || cats[0].ItemCount != 5 {
		t.Errorf("cats[0] = %+v", cats[0])
	}
	if cats[0].Description != "All rice" {
		t.Errorf("cats[0].Description = %q", cats[0].Description)
	}
	if cats[1].ItemCount != 3 || cats[1].Description != "Browse Snacks products" {
		t.Errorf("cats[1] = %+v", cats[1])
	}
	if cats[2].Name != "Misc" || cats[2].ID != "" || cats[2].ItemCount != 0 {
		t.Errorf("cats[2] = %+v", cats[2])
	}
}

func TestParseCategories_Malformed(t *testing.T) {
	if _, err := ParseCategories([]byte(`{"status": "ok", "meta": {}}`)); !errors.Is(err, domain.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}
