package advice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryDirName(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"simple", "https://www.gov.uk/foreign-travel-advice/france", "france", false},
		{"hyphenated", "https://www.gov.uk/foreign-travel-advice/saint-kitts-and-nevis", "saint-kitts-and-nevis", false},
		{"dot segment", "https://example.com/.", "", true},
		{"dotdot segment", "https://example.com/..", "", true},
		{"empty segment", "https://example.com/france/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Country{Name: tt.name, URL: tt.url}.DirName()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Summary", "summary"},
		{"Safety and security", "safety-and-security"},
		{"Entry requirements", "entry-requirements"},
		{"Terrorism in St. Pierre", "terrorism-in-st_-pierre"},
		{"Advice A/B testing", "advice-a_b-testing"},
		{"  padded   title  ", "padded-title"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Page{Title: tt.title}.FileName())
	}
}

func TestResolveURL(t *testing.T) {
	base := "https://www.gov.uk/foreign-travel-advice"
	assert.Equal(t, "https://www.gov.uk/foreign-travel-advice/spain",
		resolveURL(base, "/foreign-travel-advice/spain"))
	assert.Equal(t, "https://example.com/abs",
		resolveURL(base, "https://example.com/abs"))
}
