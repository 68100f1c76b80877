package kyc

import (
	"math"
	"time"
)

type DocumentType string

const (
	DocDriverLicenseScan DocumentType = "driver_license_scan"
	DocNationalID        DocumentType = "national_id"
	DocPassportPhoto     DocumentType = "passport_photo"
	DocUtilityBill       DocumentType = "utility_bill"
	DocBackgroundCheck   DocumentType = "background_check"
)

var (
	requiredDocuments = []DocumentType{DocDriverLicenseScan, DocNationalID, DocPassportPhoto}
	optionalDocuments = []DocumentType{DocUtilityBill}
	// scoredDocuments is the full set used by the verification score
	scoredDocuments = []DocumentType{DocDriverLicenseScan, DocNationalID, DocPassportPhoto, DocUtilityBill, DocBackgroundCheck}
)

type Document struct {
	Type               DocumentType `json:"type"`
	VerificationStatus string       `json:"verification_status"`
	UploadedAt         time.Time    `json:"uploaded_at"`
}

type ChecklistEntry struct {
	Required           bool       `json:"required"`
	Uploaded           bool       `json:"uploaded"`
	VerificationStatus string     `json:"verification_status,omitempty"`
	UploadedAt         *time.Time `json:"uploaded_at,omitempty"`
}

// RequiredDocumentsChecklist joins uploaded documents against the required and
// optional sets. When a type was uploaded several times the latest upload wins.
func RequiredDocumentsChecklist(docs []Document) map[DocumentType]ChecklistEntry {
	latest := latestByType(docs)

	checklist := make(map[DocumentType]ChecklistEntry, len(requiredDocuments)+len(optionalDocuments))
	add := func(t DocumentType, required bool) {
		entry := ChecklistEntry{Required: required}
		if doc, ok := latest[t]; ok {
			at := doc.UploadedAt
			entry.Uploaded = true
			entry.VerificationStatus = doc.VerificationStatus
			entry.UploadedAt = &at
		}
		checklist[t] = entry
	}
	for _, t := range requiredDocuments {
		add(t, true)
	}
	for _, t := range optionalDocuments {
		add(t, false)
	}
	return checklist
}

// DocumentsCompletionScore is the percentage of the scored document set present.
func DocumentsCompletionScore(docs []Document) int {
	latest := latestByType(docs)
	n := 0
	for _, t := range scoredDocuments {
		if _, ok := latest[t]; ok {
			n++
		}
	}
	return int(math.Round(100 * float64(n) / float64(len(scoredDocuments))))
}

// VerificationScore weighs profile completion, documents and KYC progress 40/35/25.
func VerificationScore(profileCompletion int, docs []Document, p *Progress) int {
	score := 0.4*float64(clampPercent(profileCompletion)) +
		0.35*float64(DocumentsCompletionScore(docs)) +
		0.25*float64(p.ProgressPercentage())
	return clampPercent(int(math.Round(score)))
}

func latestByType(docs []Document) map[DocumentType]Document {
	latest := make(map[DocumentType]Document, len(docs))
	for _, d := range docs {
		if cur, ok := latest[d.Type]; !ok || d.UploadedAt.After(cur.UploadedAt) {
			latest[d.Type] = d
		}
	}
	return latest
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
