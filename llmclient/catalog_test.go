package llmclient

import "testing"

func TestGetModelInfoByIDAndAlias(t *testing.T) {
	byID := GetModelInfo("claude-sonnet-4-5")
	if byID == nil {
		t.Fatal("claude-sonnet-4-5 missing from catalog")
	}
	byAlias := GetModelInfo("sonnet")
	if byAlias == nil || byAlias.ID != byID.ID {
		t.Errorf("alias lookup = %+v, want ID %s", byAlias, byID.ID)
	}
	if GetModelInfo("no-such-model") != nil {
		t.Error("unknown model must return nil")
	}
}

func TestListModelsFiltersByProvider(t *testing.T) {
	all := ListModels("")
	if len(all) != len(Models) {
		t.Errorf("ListModels(\"\") = %d entries, want %d", len(all), len(Models))
	}
	for _, m := range ListModels("anthropic") {
		if m.Provider != "anthropic" {
			t.Errorf("filtered list contains %s (provider %s)", m.ID, m.Provider)
		}
	}
}

func TestGetCheapestModel(t *testing.T) {
	cheapest := GetCheapestModel("anthropic")
	if cheapest == nil {
		t.Fatal("no cheapest anthropic model")
	}
	for _, m := range ListModels("anthropic") {
		if m.InputCostPerMillion != nil && *m.InputCostPerMillion < *cheapest.InputCostPerMillion {
			t.Errorf("%s is cheaper than reported cheapest %s", m.ID, cheapest.ID)
		}
	}
	if GetCheapestModel("nonexistent") != nil {
		t.Error("unknown provider must return nil")
	}
}

func TestGetLatestModel(t *testing.T) {
	latest := GetLatestModel("openai")
	if latest == nil || latest.Provider != "openai" {
		t.Fatalf("GetLatestModel(openai) = %+v", latest)
	}
}

func TestCatalogPricingComplete(t *testing.T) {
	for _, m := range Models {
		if m.InputCostPerMillion == nil || m.OutputCostPerMillion == nil {
			t.Errorf("%s is missing pricing", m.ID)
		}
	}
}
