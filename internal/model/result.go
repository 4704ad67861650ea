package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// ErrMalformedResponse is returned by FromResponse when the body is not a JSON object.
var ErrMalformedResponse = errors.New("response body is not a JSON object")

// AnalysisResult is the normalized outcome of one successful analysis.
// It is immutable: fields are unexported and accessors return copies.
type AnalysisResult struct {
	diagnoses     []string
	procedures    []string
	complications []string
	surgeryType   string
	anesthesia    string
	admissionType string
	remarks       string

	primaryConditions    []string
	definitiveProcedures []string
	supportingProcedures []string

	primaryPackage   Package
	addOnPackages    []Package
	rejectedPackages []RejectedPackage
	totalApplicable  int

	summary           string
	confidence        Confidence
	riskFlags         []string
	requiredDocuments []string
}

// FromResponse decodes a response body into an AnalysisResult.
//
// Missing sections, lists and scores are not errors: they become empty values.
// A section whose shape cannot be decoded at all is treated as missing.
// The only failure is a body that is not a JSON object.
func FromResponse(raw []byte) (*AnalysisResult, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedResponse
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &sections); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var resp Response
	decodeSection(sections, "clinical_extraction", &resp.ClinicalExtraction)
	decodeSection(sections, "normalized_medical_concepts", &resp.NormalizedMedicalConcepts)
	decodeSection(sections, "package_recommendation", &resp.PackageRecommendation)
	decodeSection(sections, "insurance_justification", &resp.InsuranceJustification)

	return FromWire(resp), nil
}

func decodeSection[T any](sections map[string]json.RawMessage, key string, dst **T) {
	raw, ok := sections[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return
	}
	*dst = &v
}

// FromWire normalizes an already decoded Response.
func FromWire(resp Response) *AnalysisResult {
	r := &AnalysisResult{}

	if ce := resp.ClinicalExtraction; ce != nil {
		r.diagnoses = clone(ce.Diagnoses)
		r.procedures = clone(ce.Procedures)
		r.complications = clone(ce.Complications)
		r.surgeryType = string(ce.SurgeryType)
		r.anesthesia = string(ce.Anesthesia)
		r.admissionType = string(ce.AdmissionType)
		r.remarks = string(ce.Remarks)
	}

	if nc := resp.NormalizedMedicalConcepts; nc != nil {
		r.primaryConditions = clone(nc.PrimaryConditions)
		r.definitiveProcedures = clone(nc.DefinitiveProcedures)
		r.supportingProcedures = clone(nc.SupportingProcedures)
	}

	hasTotal := false
	if pr := resp.PackageRecommendation; pr != nil {
		if pr.PrimaryPackage != nil {
			r.primaryPackage = *pr.PrimaryPackage
		}
		r.addOnPackages = clone(pr.AddOnPackages)
		r.rejectedPackages = clone(pr.RejectedPackages)
		if pr.TotalApplicablePackages != nil {
			r.totalApplicable = max(int(*pr.TotalApplicablePackages), 0)
			hasTotal = true
		}
	}
	if !hasTotal {
		r.totalApplicable = len(r.addOnPackages)
		if !r.primaryPackage.IsZero() {
			r.totalApplicable++
		}
	}

	var score float64
	if ij := resp.InsuranceJustification; ij != nil {
		r.summary = string(ij.Summary)
		if ij.ConfidenceScore != nil {
			score = float64(*ij.ConfidenceScore)
		}
		r.riskFlags = clone(ij.RiskFlags)
		r.requiredDocuments = clone(ij.RequiredDocuments)
	}
	r.confidence = NewConfidence(score)

	return r
}

// clone returns a non-nil copy of s.
func clone[S ~[]E, E any](s S) []E {
	out := make([]E, len(s))
	copy(out, s)
	return out
}

// Diagnoses returns the extracted diagnoses in server order.
func (r *AnalysisResult) Diagnoses() []string { return slices.Clone(r.diagnoses) }

// Procedures returns the extracted procedures in server order.
func (r *AnalysisResult) Procedures() []string { return slices.Clone(r.procedures) }

// Complications returns the extracted complications.
func (r *AnalysisResult) Complications() []string { return slices.Clone(r.complications) }

// SurgeryType returns the surgery type, or "".
func (r *AnalysisResult) SurgeryType() string { return r.surgeryType }

// Anesthesia returns the anesthesia used, or "".
func (r *AnalysisResult) Anesthesia() string { return r.anesthesia }

// AdmissionType returns the admission type, or "".
func (r *AnalysisResult) AdmissionType() string { return r.admissionType }

// Remarks returns free-text clinical remarks, or "".
func (r *AnalysisResult) Remarks() string { return r.remarks }

// PrimaryConditions returns the normalized primary conditions.
func (r *AnalysisResult) PrimaryConditions() []string { return slices.Clone(r.primaryConditions) }

// DefinitiveProcedures returns the normalized definitive procedures.
func (r *AnalysisResult) DefinitiveProcedures() []string {
	return slices.Clone(r.definitiveProcedures)
}

// SupportingProcedures returns the normalized supporting procedures.
func (r *AnalysisResult) SupportingProcedures() []string {
	return slices.Clone(r.supportingProcedures)
}

// PrimaryPackage returns the main recommended package. It is the zero
// Package when the service did not recommend one.
func (r *AnalysisResult) PrimaryPackage() Package { return r.primaryPackage }

// AddOnPackages returns additional applicable packages.
func (r *AnalysisResult) AddOnPackages() []Package { return slices.Clone(r.addOnPackages) }

// RejectedPackages returns the candidate packages that were ruled out.
func (r *AnalysisResult) RejectedPackages() []RejectedPackage {
	return slices.Clone(r.rejectedPackages)
}

// TotalApplicablePackages returns the service's count, or the number of
// primary and add-on packages when the service omitted it.
func (r *AnalysisResult) TotalApplicablePackages() int { return r.totalApplicable }

// Summary returns the justification summary, or "".
func (r *AnalysisResult) Summary() string { return r.summary }

// Confidence returns the confidence score with its percentage and tier.
func (r *AnalysisResult) Confidence() Confidence { return r.confidence }

// RiskFlags returns the risk flags in server order.
func (r *AnalysisResult) RiskFlags() []string { return slices.Clone(r.riskFlags) }

// RequiredDocuments returns the documents needed for the claim.
func (r *AnalysisResult) RequiredDocuments() []string {
	return slices.Clone(r.requiredDocuments)
}

// AllClear reports whether the service raised no risk flags.
func (r *AnalysisResult) AllClear() bool { return len(r.riskFlags) == 0 }

// wireResult mirrors Response with every list present, for encoding.
type wireResult struct {
	ClinicalExtraction struct {
		Diagnoses     []string `json:"diagnoses"`
		Procedures    []string `json:"procedures"`
		Complications []string `json:"complications"`
		SurgeryType   string   `json:"surgery_type"`
		Anesthesia    string   `json:"anesthesia"`
		AdmissionType string   `json:"admission_type"`
		Remarks       string   `json:"remarks"`
	} `json:"clinical_extraction"`
	NormalizedMedicalConcepts struct {
		PrimaryConditions    []string `json:"primary_conditions"`
		DefinitiveProcedures []string `json:"definitive_procedures"`
		SupportingProcedures []string `json:"supporting_procedures"`
	} `json:"normalized_medical_concepts"`
	PackageRecommendation struct {
		PrimaryPackage          Package           `json:"primary_package"`
		AddOnPackages           []Package         `json:"add_on_packages"`
		RejectedPackages        []RejectedPackage `json:"rejected_packages"`
		TotalApplicablePackages int               `json:"total_applicable_packages"`
	} `json:"package_recommendation"`
	InsuranceJustification struct {
		Summary           string   `json:"summary"`
		ConfidenceScore   float64  `json:"confidence_score"`
		RiskFlags         []string `json:"risk_flags"`
		RequiredDocuments []string `json:"required_documents"`
	} `json:"insurance_justification"`
}

// MarshalJSON encodes the result in the service's wire shape.
// Lists are always present, as [] when empty.
func (r *AnalysisResult) MarshalJSON() ([]byte, error) {
	var w wireResult

	w.ClinicalExtraction.Diagnoses = clone(r.diagnoses)
	w.ClinicalExtraction.Procedures = clone(r.procedures)
	w.ClinicalExtraction.Complications = clone(r.complications)
	w.ClinicalExtraction.SurgeryType = r.surgeryType
	w.ClinicalExtraction.Anesthesia = r.anesthesia
	w.ClinicalExtraction.AdmissionType = r.admissionType
	w.ClinicalExtraction.Remarks = r.remarks

	w.NormalizedMedicalConcepts.PrimaryConditions = clone(r.primaryConditions)
	w.NormalizedMedicalConcepts.DefinitiveProcedures = clone(r.definitiveProcedures)
	w.NormalizedMedicalConcepts.SupportingProcedures = clone(r.supportingProcedures)

	w.PackageRecommendation.PrimaryPackage = r.primaryPackage
	w.PackageRecommendation.AddOnPackages = clone(r.addOnPackages)
	w.PackageRecommendation.RejectedPackages = clone(r.rejectedPackages)
	w.PackageRecommendation.TotalApplicablePackages = r.totalApplicable

	w.InsuranceJustification.Summary = r.summary
	w.InsuranceJustification.ConfidenceScore = r.confidence.Raw
	w.InsuranceJustification.RiskFlags = clone(r.riskFlags)
	w.InsuranceJustification.RequiredDocuments = clone(r.requiredDocuments)

	return json.Marshal(w)
}
