package studyresource

import (
	"fmt"
	"time"

	"github.com/trezcool/masomo-admin/core"
)

// Resource types
const (
	TypePDF      = "pdf"
	TypeVideo    = "video"
	TypeLink     = "link"
	TypeDocument = "document"
)

var Types = []string{TypePDF, TypeVideo, TypeLink, TypeDocument}

type (
	// Resource is a study material shared with a class.
	Resource struct {
		ID            string    `json:"_id"`
		Title         string    `json:"title"`
		Description   string    `json:"description,omitempty"`
		Subject       string    `json:"subject"`
		ClassID       string    `json:"classId,omitempty"`
		ClassName     string    `json:"className,omitempty"` // server computed
		Type          string    `json:"type"`
		FileURL       string    `json:"fileUrl"`
		FileSize      int64     `json:"fileSize"`                // bytes
		FileSizeLabel string    `json:"fileSizeLabel,omitempty"` // server computed
		Downloads     int       `json:"downloads"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// Form is the create and edit form of a Resource.
	Form struct {
		Title       string `json:"title" validate:"required,notblank,max=100"`
		Description string `json:"description,omitempty" validate:"max=500"`
		Subject     string `json:"subject" validate:"required,notblank,max=50"`
		ClassID     string `json:"classId,omitempty"`
		Type        string `json:"type" validate:"required,oneof=pdf video link document"`
		FileURL     string `json:"fileUrl" validate:"required,url"`
		FileSize    int64  `json:"fileSize" validate:"min=0"`
	}
)

func (f *Form) Clean() {
	f.Title = core.CleanString(f.Title)
	f.Description = core.CleanString(f.Description)
	f.Subject = core.CleanString(f.Subject)
	f.Type = core.CleanString(f.Type, true /* lower */)
	f.FileURL = core.CleanString(f.FileURL)
}

func EditForm(r Resource) Form {
	return Form{
		Title:       r.Title,
		Description: r.Description,
		Subject:     r.Subject,
		ClassID:     r.ClassID,
		Type:        r.Type,
		FileURL:     r.FileURL,
		FileSize:    r.FileSize,
	}
}

// Patch applies `f` on a cached Resource until the refetch brings the server's copy.
func Patch(r Resource, f Form) Resource {
	if f.FileSize != r.FileSize {
		r.FileSizeLabel = ""
	}
	if f.ClassID != r.ClassID {
		r.ClassName = ""
	}
	r.Title = f.Title
	r.Description = f.Description
	r.Subject = f.Subject
	r.ClassID = f.ClassID
	r.Type = f.Type
	r.FileURL = f.FileURL
	r.FileSize = f.FileSize
	return r
}

// SizeLabel returns the server's size label, or a locally formatted one while it is missing.
func (r Resource) SizeLabel() string {
	if r.FileSizeLabel != "" {
		return r.FileSizeLabel
	}
	return DisplaySize(r.FileSize)
}

// DisplaySize formats a byte count, e.g. 1536 -> "1.5 KB".
func DisplaySize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 3; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

func ID(r Resource) string { return r.ID }
