package models

import "testing"

func TestTranslationSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     TranslationSet
		wantErr bool
	}{
		{
			name: "complete",
			set:  TranslationSet{En: "water", Es: "agua", Hi: "पानी"},
		},
		{
			name:    "missing hindi",
			set:     TranslationSet{En: "water", Es: "agua"},
			wantErr: true,
		},
		{
			name:    "whitespace only",
			set:     TranslationSet{En: "water", Es: "   ", Hi: "पानी"},
			wantErr: true,
		},
		{
			name:    "offline marker",
			set:     TranslationSet{En: "hello", Es: "[Offline] hola", Hi: "नमस्ते"},
			wantErr: true,
		},
		{
			name:    "failed marker",
			set:     TranslationSet{En: "hello", Es: "hola", Hi: "Translation Failed"},
			wantErr: true,
		},
		{
			name:    "error marker case insensitive",
			set:     TranslationSet{En: "ERROR", Es: "hola", Hi: "नमस्ते"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTranslationSetGetSet(t *testing.T) {
	var ts TranslationSet
	ts.Set("en", "water")
	ts.Set("es", "agua")
	ts.Set("hi", "पानी")
	ts.Set("fr", "eau") // unsupported, ignored
	if ts.Get("en") != "water" || ts.Get("es") != "agua" || ts.Get("hi") != "पानी" {
		t.Errorf("round trip failed: %+v", ts)
	}
	if ts.Get("fr") != "" {
		t.Error("unsupported language should return empty")
	}
}

func TestPendingEntryKey(t *testing.T) {
	a := PendingEntry{Word: "agua", Language: "es"}
	b := PendingEntry{Word: "agua", Language: "en"}
	if a.Key() == b.Key() {
		t.Error("keys for different languages should differ")
	}
}
