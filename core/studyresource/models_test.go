package studyresource

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core"
)

func TestDisplaySize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := DisplaySize(tt.n); got != tt.want {
			t.Errorf("DisplaySize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestPatchSizeLabel(t *testing.T) {
	r := Resource{ID: "r1", Title: "Modul", FileSize: 1024, FileSizeLabel: "1 KB (server)"}

	kept := Patch(r, Form{Title: "Modul 1", FileSize: 1024})
	assert.Equal(t, "1 KB (server)", kept.SizeLabel())

	// until the refetch, a changed size shows a locally formatted label, not the stale one
	changed := Patch(r, Form{Title: "Modul 1", FileSize: 2 * 1024 * 1024})
	assert.Empty(t, changed.FileSizeLabel)
	assert.Equal(t, "2.0 MB", changed.SizeLabel())
}

func TestFormValidation(t *testing.T) {
	v := core.NewValidator()
	f := Form{Title: "Modul", Subject: "Fisika", Type: TypePDF, FileURL: "https://cdn.masomo.test/modul.pdf", FileSize: 10}
	assert.Nil(t, v.Check(f))

	f.Type = "zip"
	f.FileURL = "not a url"
	errs := v.Check(f)
	assert.Contains(t, errs, "type")
	assert.Contains(t, errs, "fileUrl")
}
